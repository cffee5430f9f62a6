package cmd

import (
	"bufio"
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lk2023060901/databrief-go/internal/json"
	"github.com/lk2023060901/databrief-go/pkg/codec"
	"github.com/lk2023060901/databrief-go/pkg/log"
	"github.com/lk2023060901/databrief-go/pkg/schema"
)

var decodeCmd = &cobra.Command{
	Use:     "decode",
	Short:   "Decode length-prefixed binary frames into JSON lines",
	Example: `  briefctl decode -s schema.yaml -i orders.bin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, root, err := loadSchemaFile(schemaPath)
		if err != nil {
			return err
		}
		c := newCodec()
		defer c.Close()
		return withIO(func(r io.Reader, w io.Writer) error {
			return runDecode(cmd.Context(), c, root, r, w)
		})
	},
}

// runDecode 读取帧直到 EOF，批量解码后每条记录输出一行 JSON。
func runDecode(ctx context.Context, c *codec.Codec, s *schema.Schema, r io.Reader, w io.Writer) error {
	framer := codec.NewLengthPrefixedFramer(0)
	br := bufio.NewReader(r)

	var bufs [][]byte
	for {
		frame, err := framer.ReadFrame(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "frame %d", len(bufs))
		}
		bufs = append(bufs, frame)
	}

	values, err := c.DecodeBatch(ctx, s, bufs)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	desc := schema.RecordOf(s)
	for _, v := range values {
		line, err := json.Marshal(toJSON(desc, v))
		if err != nil {
			return errors.Wrap(err, "marshal record")
		}
		bw.Write(line)
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return errors.Wrap(err, "flush output")
	}
	log.Ctx(ctx).Debug("decode done", zap.String("schema", s.Name), zap.Int("records", len(values)))
	return nil
}
