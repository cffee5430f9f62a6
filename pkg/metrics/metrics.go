// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// briefNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	briefNamespace = "brief"

	codecSubsystem = "codec"

	opLabelName     = "op"
	statusLabelName = "status"
	schemaLabelName = "schema"

	OpEncode = "encode"
	OpDecode = "decode"

	StatusOK = "ok"
)

var (
	// latencyBuckets 为编解码耗时直方图的桶划分，单位为微秒。
	// [1 2 4 ... 65536]
	latencyBuckets = prometheus.ExponentialBuckets(1, 2, 17)

	// sizeBuckets 为编码结果大小的桶划分，单位为字节。
	sizeBuckets = prometheus.ExponentialBuckets(8, 4, 12)

	CodecOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: briefNamespace,
			Subsystem: codecSubsystem,
			Name:      "ops_total",
			Help:      "编解码调用次数，status 为 ok 或失败的错误类别",
		}, []string{opLabelName, schemaLabelName, statusLabelName})

	CodecBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: briefNamespace,
			Subsystem: codecSubsystem,
			Name:      "bytes",
			Help:      "成功编码产生或解码消耗的字节数",
			Buckets:   sizeBuckets,
		}, []string{opLabelName, schemaLabelName})

	CodecLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: briefNamespace,
			Subsystem: codecSubsystem,
			Name:      "latency",
			Help:      "单次编解码耗时（微秒）",
			Buckets:   latencyBuckets,
		}, []string{opLabelName, schemaLabelName})

	BatchInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: briefNamespace,
			Subsystem: codecSubsystem,
			Name:      "batch_inflight",
			Help:      "批量编解码中尚未完成的任务数",
		})

	registerOnce     sync.Once
	metricRegisterer prometheus.Registerer
)

// GetRegisterer 返回全局 Prometheus Registerer。
// 如果尚未通过 Register 显式设置，则返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// Register 注册当前定义的所有指标，重复调用只生效一次。
func Register(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(CodecOps)
		r.MustRegister(CodecBytes)
		r.MustRegister(CodecLatency)
		r.MustRegister(BatchInflight)
		r.MustRegister(LoggingRatedDropped)
		metricRegisterer = r
	})
}
