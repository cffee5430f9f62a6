package cmd

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lk2023060901/databrief-go/internal/json"
	"github.com/lk2023060901/databrief-go/pkg/codec"
	"github.com/lk2023060901/databrief-go/pkg/log"
	"github.com/lk2023060901/databrief-go/pkg/schema"
)

const maxLineSize = 64 << 20

var (
	inputPath  string
	outputPath string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode JSON lines into length-prefixed binary frames",
	Long: `Read one JSON object per line, encode each against the root record of the
schema file and write the results as length-prefixed frames.`,
	Example: `  briefctl encode -s schema.yaml -i orders.jsonl -o orders.bin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, root, err := loadSchemaFile(schemaPath)
		if err != nil {
			return err
		}
		c := newCodec()
		defer c.Close()
		return withIO(func(r io.Reader, w io.Writer) error {
			return runEncode(cmd.Context(), c, root, r, w)
		})
	},
}

// runEncode 读取 JSON 行，批量编码后逐条写出帧。
func runEncode(ctx context.Context, c *codec.Codec, s *schema.Schema, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var values []any
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var raw any
		if err := json.Unmarshal(text, &raw); err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		rec, err := recordFromJSON(s, raw, s.Name)
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}
		values = append(values, rec)
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "read input")
	}

	bufs, err := c.EncodeBatch(ctx, s, values)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	framer := codec.NewLengthPrefixedFramer(0)
	for _, b := range bufs {
		if err := framer.WriteFrame(bw, b); err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "flush output")
	}
	log.Ctx(ctx).Debug("encode done", zap.String("schema", s.Name), zap.Int("records", len(bufs)))
	return nil
}

// withIO 根据 --input/--output 打开输入输出，缺省为标准输入输出。
func withIO(fn func(r io.Reader, w io.Writer) error) error {
	var r io.Reader = os.Stdin
	if inputPath != "" && inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			return errors.Wrap(err, "open input")
		}
		defer f.Close()
		r = f
	}
	var w io.Writer = os.Stdout
	if outputPath != "" && outputPath != "-" {
		f, err := os.Create(outputPath)
		if err != nil {
			return errors.Wrap(err, "create output")
		}
		defer f.Close()
		w = f
	}
	return fn(r, w)
}

func init() {
	for _, c := range []*cobra.Command{encodeCmd, decodeCmd} {
		c.Flags().StringVarP(&inputPath, "input", "i", "-", "Input file, - for stdin")
		c.Flags().StringVarP(&outputPath, "output", "o", "-", "Output file, - for stdout")
		rootCmd.AddCommand(c)
	}
}
