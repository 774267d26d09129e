// Package main provides the Ember runtime CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"

	"github.com/ember-ml/ember/eager"
	"github.com/ember-ml/ember/rawops"
	"github.com/ember-ml/ember/tensor"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ember: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	switch os.Args[1] {
	case "version":
		fmt.Printf("Ember %s\n", version)
	case "demo":
		if err := runDemo(logger); err != nil {
			logger.Fatal("demo failed", zap.Error(err))
		}
	case "tokens":
		if err := runTokens(logger, os.Args[2:]); err != nil {
			logger.Fatal("tokens failed", zap.Error(err))
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("Ember - eager tensor execution for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  demo       Run a short eager execution walkthrough")
	fmt.Println("  tokens     Tokenize text and reduce the ids on the eager runtime")
}

// runDemo stages a few operations against the default context and prints
// the results.
func runDemo(logger *zap.Logger) error {
	ctx, err := eager.NewContext(eager.ContextOptions{})
	if err != nil {
		return err
	}
	defer ctx.Close()
	logger.Info("context ready", zap.Strings("devices", ctx.DeviceNames()))

	x, err := eager.HandleFromSlice(ctx, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	if err != nil {
		return err
	}
	defer x.Close()

	xt, err := rawops.Transpose(ctx, x)
	if err != nil {
		return err
	}
	defer xt.Close()

	prod, err := rawops.MatMul(ctx, x, xt)
	if err != nil {
		return err
	}
	defer prod.Close()

	raw, err := prod.Resolve()
	if err != nil {
		return err
	}
	defer raw.Release()

	fmt.Printf("x @ x^T shape=%v data=%v\n", raw.Shape(), raw.AsFloat32())
	logger.Info("demo complete",
		zap.Int("live_ops", ctx.LiveOps()),
		zap.Int("live_handles", ctx.LiveHandles()))
	return nil
}

// runTokens encodes text with tiktoken, lifts the ids into an int64
// tensor, and reduces them on the eager runtime.
func runTokens(logger *zap.Logger, args []string) error {
	fs := flag.NewFlagSet("tokens", flag.ExitOnError)
	encoding := fs.String("encoding", "cl100k_base", "tiktoken encoding name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	text := "hello eager world"
	if fs.NArg() > 0 {
		text = fs.Arg(0)
	}

	enc, err := tiktoken.GetEncoding(*encoding)
	if err != nil {
		return err
	}
	ids := enc.Encode(text, nil, nil)
	if len(ids) == 0 {
		return fmt.Errorf("no tokens in input")
	}
	logger.Info("encoded", zap.String("encoding", *encoding), zap.Int("tokens", len(ids)))

	ctx, err := eager.NewContext(eager.ContextOptions{})
	if err != nil {
		return err
	}
	defer ctx.Close()

	data := make([]int64, len(ids))
	for i, id := range ids {
		data[i] = int64(id)
	}
	h, err := eager.HandleFromSlice(ctx, data, tensor.Shape{len(data)})
	if err != nil {
		return err
	}
	defer h.Close()

	sum, err := rawops.Sum(ctx, h)
	if err != nil {
		return err
	}
	defer sum.Close()

	raw, err := sum.Resolve()
	if err != nil {
		return err
	}
	defer raw.Release()

	fmt.Printf("tokens=%v sum=%d\n", ids, raw.AsInt64()[0])
	return nil
}
