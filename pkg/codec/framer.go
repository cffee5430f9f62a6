package codec

import (
	"encoding/binary"
	"io"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/lk2023060901/databrief-go/pkg/util/merr"
)

// Framer 抽象了编码结果在字节流上的打包/解包能力。
//
// 约定：
//   - 一帧数据的格式为：4 字节大端长度 + 一条记录的编码结果，与嵌套记录的长度前缀一致；
//   - 帧内容不做任何解释，解码仍需调用方提供 Schema。
type Framer interface {
	// WriteFrame 将一条编码结果打包为一帧并写入到 w 中。
	WriteFrame(w io.Writer, payload []byte) error

	// ReadFrame 从 r 中读取一帧数据，流在帧边界结束时返回 io.EOF。
	ReadFrame(r io.Reader) ([]byte, error)
}

// LengthPrefixedFramer 使用长度前缀（4 字节大端）作为帧边界。
type LengthPrefixedFramer struct {
	// MaxFrameSize 为允许的最大帧大小，单位字节。
	// 为 0 时使用默认值 defaultMaxFrameSize。
	MaxFrameSize uint32
}

var _ Framer = (*LengthPrefixedFramer)(nil)

const defaultMaxFrameSize uint32 = 16 * 1024 * 1024 // 16MB

// NewLengthPrefixedFramer 创建一个长度前缀帧编码器。
// maxFrameSize 为 0 时使用默认值。
func NewLengthPrefixedFramer(maxFrameSize uint32) *LengthPrefixedFramer {
	if maxFrameSize == 0 {
		maxFrameSize = defaultMaxFrameSize
	}
	return &LengthPrefixedFramer{
		MaxFrameSize: maxFrameSize,
	}
}

// WriteFrame 写入长度前缀与数据。
func (f *LengthPrefixedFramer) WriteFrame(w io.Writer, payload []byte) error {
	length := len(payload)
	if uint64(length) > uint64(f.effectiveMaxSize()) {
		return merr.WrapErrParameterInvalidMsg("framer: frame size %d exceeds max %d", length, f.effectiveMaxSize())
	}

	// 头部与数据合并为一次写入。
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	buf.B = binary.BigEndian.AppendUint32(buf.B, uint32(length))
	buf.B = append(buf.B, payload...)

	if _, err := w.Write(buf.B); err != nil {
		return merr.WrapErrIoFailed("framer: write frame", err)
	}
	return nil
}

// ReadFrame 读取一帧，返回的切片归调用方所有。
func (f *LengthPrefixedFramer) ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	n, err := io.ReadFull(r, header[:])
	if err != nil {
		if errors.Is(err, io.EOF) && n == 0 {
			return nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, merr.WrapErrTruncatedBuffer("frame header", len(header), n)
		}
		return nil, merr.WrapErrIoFailed("framer: read header", err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length > f.effectiveMaxSize() {
		return nil, merr.WrapErrInvalidCount("frame", int64(length),
			"frame size exceeds max "+strconv.FormatUint(uint64(f.effectiveMaxSize()), 10))
	}

	body := make([]byte, int(length))
	if n, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, merr.WrapErrTruncatedBuffer("frame body", int(length), n)
		}
		return nil, merr.WrapErrIoFailed("framer: read body", err)
	}
	return body, nil
}

func (f *LengthPrefixedFramer) effectiveMaxSize() uint32 {
	if f == nil || f.MaxFrameSize == 0 {
		return defaultMaxFrameSize
	}
	return f.MaxFrameSize
}
