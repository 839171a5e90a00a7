package fieldproto

import (
	"context"
	"errors"
	"io"
	"log/slog"
)

// StreamOptions configures ServeStream.
type StreamOptions struct {
	// Echo echoes typed characters back to the writer, for terminals and
	// serial consoles that do not echo locally.
	Echo bool

	// Newline ends every output line. Defaults to "\r\n".
	Newline string

	// Prompt is written before each line is read. Empty means no prompt.
	Prompt string

	// Logger receives one debug record per dispatched line. Defaults to a
	// discarding logger.
	Logger *slog.Logger
}

// ServeStream runs the command loop over a character stream: read a line,
// tokenize it, dispatch it and write the reply, until r reports EOF or ctx
// is done. A single Line is reused and fully reset for every iteration.
//
// ctx is checked between lines. A blocked read is only interrupted by
// closing r.
func ServeStream(ctx context.Context, r io.Reader, w io.Writer, d *Dispatcher, opts StreamOptions) error {
	if opts.Newline == "" {
		opts.Newline = "\r\n"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var echo io.Writer
	if opts.Echo {
		echo = w
	}
	reader := NewCharReader(r, echo)
	reader.Newline = opts.Newline

	out := NewTextWriter(w)
	out.Newline = opts.Newline

	var line Line
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if opts.Prompt != "" {
			if err := out.WriteText(opts.Prompt); err != nil {
				return err
			}
		}

		if err := reader.ReadLine(&line); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line.Parse()
		verb, _ := line.FieldString(0)
		resp := d.Dispatch(&line)
		logger.Debug("dispatched line",
			slog.String("verb", verb),
			slog.Int("fields", line.Fields().Count()),
			slog.Bool("ok", resp.IsOK()))

		if err := out.WriteResponse(resp); err != nil {
			return err
		}
	}
}
