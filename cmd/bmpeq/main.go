// Bmpeq loads a 24-bit BMP image, applies one transform and saves the result.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/mdouchement/bmp"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// verbose is global so every helper can report progress.
var verbose *bool

var channels = map[string]bmp.Channel{
	"red":   bmp.Red,
	"green": bmp.Green,
	"blue":  bmp.Blue,
}

var modes = map[string]bmp.EqualizeMode{
	"per-channel": bmp.PerChannel,
	"luma":        bmp.LumaOnly,
}

func main() {
	input := flag.String("i", "", "Input BMP file")
	output := flag.String("o", "", "Output BMP file, defaults to [input]_modified.bmp")
	transform := flag.String("t", "equalize", "Transform: equalize, grayscale, fill, isolate, blur or none")
	mode := flag.String("mode", "per-channel", "Equalization mode: "+strings.Join(sortedKeys(modes), ", "))
	channel := flag.String("c", "red", "Channel for fill and isolate: "+strings.Join(sortedKeys(channels), ", "))
	value := flag.Int("value", 255, "Channel value for fill")
	radius := flag.Int("radius", 1, "Blur radius")
	lenient := flag.Bool("lenient", false, "Zero-fill a truncated pixel region instead of failing")
	workers := flag.Int("workers", 1, "Number of row spans processed concurrently")
	chartPath := flag.String("chart", "", "Write the histogram of the input as a PNG chart")
	bars := flag.Int("bars", 0, "Print the histogram of the output as text bars of at most N columns")
	verbose = flag.Bool("v", false, "Verbose")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *output == "" {
		*output = strings.TrimSuffix(*input, ".bmp") + "_modified.bmp"
	}

	m, ok := modes[*mode]
	if !ok {
		log.Fatalf("unknown equalization mode %q", *mode)
	}

	b, err := bmp.Load(*input, bmp.WithEqualizeMode(m), bmp.WithLenient(*lenient), bmp.WithWorkers(*workers))
	if err != nil {
		log.Fatal(err)
	}
	if *verbose {
		fmt.Print(b.FileHeader())
		fmt.Print(b.InfoHeader())
	}

	if err = apply(b, *transform, *channel, *value, *radius); err != nil {
		log.Fatal(err)
	}

	if err = b.Save(*output); err != nil {
		log.Fatal(err)
	}
	log.Printf("Created %s", *output)

	if *bars > 0 {
		if err = printBars(os.Stdout, b, *bars); err != nil {
			log.Fatal(err)
		}
	}

	if *chartPath != "" {
		if err = writeChart(b, *chartPath); err != nil {
			log.Fatal(err)
		}
		log.Printf("Created %s", *chartPath)
	}
}

func apply(b *bmp.Bitmap, transform, channel string, value, radius int) error {
	if *verbose {
		log.Printf("Applying %s", transform)
	}

	switch transform {
	case "none":
		return nil
	case "equalize":
		return b.Equalize()
	case "grayscale":
		return b.ConvertToGrayscale()
	case "blur":
		return b.Blur(radius)
	case "fill", "isolate":
		ch, ok := channels[channel]
		if !ok {
			return errors.Errorf("unknown channel %q", channel)
		}
		if transform == "isolate" {
			return b.IsolateChannel(ch)
		}
		if value < 0 || value > 255 {
			return errors.Errorf("channel value %d out of [0, 255]", value)
		}
		return b.FillChannel(ch, uint8(value))
	default:
		return errors.Errorf("unknown transform %q", transform)
	}
}

func writeChart(b *bmp.Bitmap, path string) error {
	h := b.Histogram()
	if h == nil {
		return errors.New("no histogram for this image")
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "could not create chart")
	}
	defer f.Close()

	if err = h.WriteChart(f, 1024, 512); err != nil {
		return err
	}
	return errors.Wrap(f.Sync(), "could not flush chart to disk")
}

func printBars(w io.Writer, b *bmp.Bitmap, columns int) error {
	h, err := b.Rehistogram()
	if err != nil {
		return err
	}
	return h.WriteBars(w, columns)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}
