//go:build js && wasm
// +build js,wasm

package main

import (
	"context"
	"errors"
	"fmt"
	"syscall/js"

	"github.com/himanishpuri/AmpSpectrum/pkg/ampspectrum"
	"github.com/himanishpuri/AmpSpectrum/pkg/logger"
)

// Error codes returned to JavaScript
const (
	ErrorNone = iota
	ErrorInvalidArgs
	ErrorHeaderNotFound
	ErrorTruncatedData
	ErrorTagMismatch
	ErrorDegenerateRange
	ErrorProcessing
)

var kindCodes = map[ampspectrum.Kind]int{
	ampspectrum.KindHeaderNotFound:  ErrorHeaderNotFound,
	ampspectrum.KindTruncatedData:   ErrorTruncatedData,
	ampspectrum.KindTagMismatch:     ErrorTagMismatch,
	ampspectrum.KindDegenerateRange: ErrorDegenerateRange,
	ampspectrum.KindInvalidConfig:   ErrorInvalidArgs,
}

// computeSpectrum analyzes a WAV container held in a Uint8Array.
// Optional second argument: {window, bins, leadIn, method, strict}.
// Returns: {error: number, data: object | string}
func computeSpectrum(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeErrorResponse(ErrorInvalidArgs, "Expected at least 1 argument: bytes")
	}

	bytesJS := args[0]
	if bytesJS.Type() != js.TypeObject || bytesJS.Length() == 0 {
		return makeErrorResponse(ErrorInvalidArgs, "bytes must be a non-empty Uint8Array")
	}

	data := make([]byte, bytesJS.Length())
	if n := js.CopyBytesToGo(data, bytesJS); n != len(data) {
		return makeErrorResponse(ErrorInvalidArgs, fmt.Sprintf("copied %d of %d bytes", n, len(data)))
	}

	opts := []ampspectrum.Option{ampspectrum.WithLogger(logger.GetLogger())}
	if len(args) > 1 && args[1].Type() == js.TypeObject {
		parsed, err := parseOptions(args[1])
		if err != nil {
			return makeErrorResponse(ErrorInvalidArgs, err.Error())
		}
		opts = append(opts, parsed...)
	}

	service, err := ampspectrum.NewService(opts...)
	if err != nil {
		return makeErrorResponse(ErrorInvalidArgs, err.Error())
	}
	defer service.Close()

	res, err := service.AnalyzeBytes(context.Background(), "browser", data)
	if err != nil {
		code := ErrorProcessing
		var se *ampspectrum.StageError
		if errors.As(err, &se) {
			if c, ok := kindCodes[se.Kind]; ok {
				code = c
			}
		}
		return makeErrorResponse(code, err.Error())
	}

	amps := js.Global().Get("Float64Array").New(len(res.Amplitudes))
	for i, a := range res.Amplitudes {
		amps.SetIndex(i, a)
	}

	header := js.Global().Get("Object").New()
	header.Set("sampleRate", res.Header.SampleRate)
	header.Set("channels", res.Header.ChannelCount)
	header.Set("bitsPerSample", res.Header.BitsPerSample)
	header.Set("dataSize", res.Header.DataSize)
	header.Set("valid", len(res.Mismatches) == 0)

	out := js.Global().Get("Object").New()
	out.Set("amplitudes", amps)
	out.Set("header", header)
	out.Set("headerOffset", res.HeaderOffset)
	out.Set("dataOffset", res.DataOffset)
	out.Set("method", res.Method)

	result := js.Global().Get("Object").New()
	result.Set("error", ErrorNone)
	result.Set("data", out)
	return result
}

func parseOptions(o js.Value) ([]ampspectrum.Option, error) {
	var opts []ampspectrum.Option
	if v := o.Get("window"); v.Type() == js.TypeNumber {
		opts = append(opts, ampspectrum.WithWindowLength(v.Int()))
	}
	if v := o.Get("bins"); v.Type() == js.TypeNumber {
		opts = append(opts, ampspectrum.WithBins(v.Int()))
	}
	if v := o.Get("leadIn"); v.Type() == js.TypeNumber {
		opts = append(opts, ampspectrum.WithLeadInBytes(v.Int()))
	}
	if v := o.Get("method"); v.Type() == js.TypeString {
		m, err := ampspectrum.ParseMethod(v.String())
		if err != nil {
			return nil, err
		}
		opts = append(opts, ampspectrum.WithMethod(m))
	}
	if v := o.Get("strict"); v.Type() == js.TypeBoolean && v.Bool() {
		opts = append(opts, ampspectrum.WithValidation(ampspectrum.Strict))
	}
	return opts, nil
}

func makeErrorResponse(errorCode int, message string) js.Value {
	result := js.Global().Get("Object").New()
	result.Set("error", errorCode)
	result.Set("data", message)
	return result
}

func main() {
	console := js.Global().Get("console")
	if !console.IsUndefined() {
		console.Call("log", "AmpSpectrum WASM module initializing...")
	}

	done := make(chan struct{})

	js.Global().Set("computeSpectrum", js.FuncOf(computeSpectrum))

	window := js.Global().Get("window")
	if !window.IsUndefined() {
		eventInit := js.Global().Get("Object").New()
		event := js.Global().Get("CustomEvent").New("wasmReady", eventInit)
		window.Call("dispatchEvent", event)
	} else if !console.IsUndefined() {
		console.Call("error", "window object is undefined")
	}

	if !console.IsUndefined() {
		console.Call("log", "AmpSpectrum WASM module loaded and ready")
	}

	<-done
}
