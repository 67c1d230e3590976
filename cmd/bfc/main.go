package main

import (
	"bufio"
	"context"
	"io"
	"os"
	"time"

	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/bfc-lang/bfc/compiler"
	"github.com/bfc-lang/bfc/compiler/back"
	"github.com/bfc-lang/bfc/compiler/interp"
	"github.com/bfc-lang/bfc/compiler/ir"
	"github.com/bfc-lang/bfc/compiler/list"
)

func main() {
	runCmd := &cli.Command{
		Name:   "run",
		Action: runAct,
		Args:   cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("in,i", "", "read program input from a file instead of stdin"),
			cli.NewFlag("out,o", "", "write program output to a file instead of stdout"),
			cli.NewFlag("unbuffered,U", false, "do not buffer program input and output"),
		},
	}

	listCmd := &cli.Command{
		Name:   "list",
		Action: listAct,
		Args:   cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("out,o", "", "write the listing to a file instead of stdout"),
		},
	}

	compileCmd := &cli.Command{
		Name:   "compile",
		Action: compileAct,
		Args:   cli.Args{},
		Flags: []*cli.Flag{
			cli.NewFlag("format,f", "bytecode", "output format: bytecode, c or go"),
			cli.NewFlag("out,o", "", "write generated code to a file instead of stdout"),
		},
	}

	app := &cli.Command{
		Name:        "bfc",
		Description: "bfc is an optimizing toolchain for a small tape language",
		Before:      before,
		Flags: []*cli.Flag{
			cli.NewFlag("optimize,O", false, "rewrite the program before running, listing or compiling it"),
			cli.NewFlag("tape,t", 0, "tape size in cells, 0 for an unbounded tape"),
			cli.NewFlag("verbosity,v", "", "verbosity topics"),
			cli.FlagfileFlag,
			cli.HelpFlag,
		},
		Commands: []*cli.Command{
			runCmd,
			listCmd,
			compileCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func before(c *cli.Command) error {
	tlog.SetVerbosity(c.String("verbosity"))

	return nil
}

func runAct(c *cli.Command) (err error) {
	ctx := tlog.ContextWithSpan(context.Background(), tlog.Root())

	if len(c.Args) == 0 {
		return errors.New("program file expected")
	}

	for _, a := range c.Args {
		p, err := compiler.BuildFile(ctx, a, c.Bool("optimize"), tapeSize(c))
		if err != nil {
			return errors.Wrap(err, "build %v", a)
		}

		in, out, closeStreams, err := openStreams(c)
		if err != nil {
			return errors.Wrap(err, "open streams")
		}

		start := time.Now()

		n, err := interp.Run(p, in, out, tapeSize(c))

		cerr := closeStreams()
		if err != nil {
			return errors.Wrap(err, "run %v", a)
		}
		if cerr != nil {
			return errors.Wrap(cerr, "close streams")
		}

		tlog.SpanFromContext(ctx).Printw("executed", "name", a, "insns", n, "elapsed", time.Since(start))
	}

	return nil
}

func listAct(c *cli.Command) (err error) {
	ctx := tlog.ContextWithSpan(context.Background(), tlog.Root())

	if len(c.Args) == 0 {
		return errors.New("program file expected")
	}

	var b []byte

	for _, a := range c.Args {
		p, err := compiler.BuildFile(ctx, a, c.Bool("optimize"), tapeSize(c))
		if err != nil {
			return errors.Wrap(err, "build %v", a)
		}

		b = list.Listing(b, p)
	}

	return writeResult(c, b)
}

func compileAct(c *cli.Command) (err error) {
	ctx := tlog.ContextWithSpan(context.Background(), tlog.Root())

	if len(c.Args) == 0 {
		return errors.New("program file expected")
	}

	f, err := back.ParseFormat(c.String("format"))
	if err != nil {
		return errors.Wrap(err, "format")
	}

	var b []byte

	for _, a := range c.Args {
		p, err := compiler.BuildFile(ctx, a, c.Bool("optimize"), tapeSize(c))
		if err != nil {
			return errors.Wrap(err, "build %v", a)
		}

		b, err = back.Compile(ctx, b, p, tapeSize(c), f)
		if err != nil {
			return errors.Wrap(err, "compile %v", a)
		}
	}

	return writeResult(c, b)
}

func tapeSize(c *cli.Command) ir.TapeSize {
	return ir.TapeSize(c.Int("tape"))
}

// openStreams prepares program input and output. The returned close
// function flushes buffered output and closes any opened files; it must be
// called on every path, error paths included.
func openStreams(c *cli.Command) (in io.Reader, out io.Writer, cls func() error, err error) {
	var files []*os.File

	in = os.Stdin

	if q := c.String("in"); q != "" {
		f, err := os.Open(q)
		if err != nil {
			return nil, nil, nil, errors.Wrap(err, "open input")
		}

		in = f
		files = append(files, f)
	}

	out = os.Stdout

	if q := c.String("out"); q != "" {
		f, err := os.Create(q)
		if err != nil {
			for _, f := range files {
				_ = f.Close()
			}

			return nil, nil, nil, errors.Wrap(err, "create output")
		}

		out = f
		files = append(files, f)
	}

	var bw *bufio.Writer

	if !c.Bool("unbuffered") {
		in = bufio.NewReader(in)
		bw = bufio.NewWriter(out)
		out = bw
	}

	cls = func() (err error) {
		if bw != nil {
			err = bw.Flush()
		}

		for _, f := range files {
			e := f.Close()
			if err == nil && e != nil {
				err = e
			}
		}

		return err
	}

	return in, out, cls, nil
}

func writeResult(c *cli.Command, b []byte) (err error) {
	if q := c.String("out"); q != "" {
		err = os.WriteFile(q, b, 0o644)

		return errors.Wrap(err, "write output")
	}

	_, err = os.Stdout.Write(b)

	return errors.Wrap(err, "write output")
}
