//go:build js && wasm
// +build js,wasm

// WebSerial front-end glue: exposes the robot's frame codec to
// JavaScript so a browser page can talk to the robot directly.
package main

import (
	"encoding/hex"
	"syscall/js"

	"dashan/protocol"
)

// feedEngine persists across feed() calls so frames split over
// WebSerial read chunks still decode.
var feedEngine *protocol.Engine

// collected gathers the frames one feed() call produced.
var collected []map[string]interface{}

func main() {
	feedEngine = protocol.NewEngine()
	for c := 0; c < 256; c++ {
		cmd := uint8(c)
		feedEngine.Register(cmd, func(data []byte) error {
			collected = append(collected, frameObject(cmd, data))
			return nil
		})
	}

	js.Global().Set("dashanWasm", js.ValueOf(map[string]interface{}{
		"checksum":    js.FuncOf(checksumWrapper),
		"encodeFrame": js.FuncOf(encodeFrameWrapper),
		"decodeFrame": js.FuncOf(decodeFrameWrapper),
		"feed":        js.FuncOf(feedWrapper),
		"commandName": js.FuncOf(commandNameWrapper),
		"version":     protocol.Version,
	}))

	// Keep the program running
	select {}
}

// checksumWrapper computes the CRC-8 of a hex string
// Args: hexString (string)
// Returns: number (uint8)
func checksumWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(0)
	}

	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf(0)
	}
	return js.ValueOf(int(protocol.Checksum(data)))
}

// encodeFrameWrapper builds a complete wire frame
// Args: cmd (uint8), dataHex (string)
// Returns: hex string of the framed bytes, or "error: ..."
func encodeFrameWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("error: missing arguments")
	}

	cmd := uint8(args[0].Int())
	data := []byte{}
	if argsHex := args[1].String(); argsHex != "" {
		var err error
		data, err = hex.DecodeString(argsHex)
		if err != nil {
			return js.ValueOf("error: invalid data hex: " + err.Error())
		}
	}
	if len(data) > protocol.MaxDataLen {
		return js.ValueOf("error: payload exceeds maximum")
	}

	raw := protocol.EncodeFrame(protocol.Frame{Cmd: cmd, Data: data})
	return js.ValueOf(hex.EncodeToString(raw))
}

// decodeFrameWrapper parses a buffer holding exactly one frame
// Args: hexString (string)
// Returns: {cmd, name, data: string (hex), error: string}
func decodeFrameWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeDecodeResult(nil, "missing hex string argument")
	}

	raw, err := hex.DecodeString(args[0].String())
	if err != nil {
		return makeDecodeResult(nil, "invalid hex string: "+err.Error())
	}

	f, err := protocol.DecodeFrame(raw)
	if err != nil {
		return makeDecodeResult(nil, err.Error())
	}
	return makeDecodeResult(frameObject(f.Cmd, f.Data), "")
}

// feedWrapper runs a chunk of serial bytes through the persistent
// parser; partial frames carry over to the next call
// Args: hexString (string)
// Returns: {frames: [{cmd, name, data}], error: string}
func feedWrapper(this js.Value, args []js.Value) interface{} {
	result := make(map[string]interface{})
	if len(args) < 1 {
		result["frames"] = []interface{}{}
		result["error"] = "missing hex string argument"
		return js.ValueOf(result)
	}

	raw, err := hex.DecodeString(args[0].String())
	if err != nil {
		result["frames"] = []interface{}{}
		result["error"] = "invalid hex string: " + err.Error()
		return js.ValueOf(result)
	}

	collected = collected[:0]
	feedEngine.Feed(raw)

	frames := make([]interface{}, len(collected))
	for i, f := range collected {
		frames[i] = f
	}
	result["frames"] = frames
	return js.ValueOf(result)
}

// commandNameWrapper resolves a command id to its protocol name
// Args: cmd (uint8)
// Returns: string
func commandNameWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("")
	}
	return js.ValueOf(protocol.CmdName(uint8(args[0].Int())))
}

func frameObject(cmd uint8, data []byte) map[string]interface{} {
	return map[string]interface{}{
		"cmd":  int(cmd),
		"name": protocol.CmdName(cmd),
		"data": hex.EncodeToString(data),
	}
}

func makeDecodeResult(frame map[string]interface{}, errMsg string) js.Value {
	result := make(map[string]interface{})
	if frame != nil {
		result["cmd"] = frame["cmd"]
		result["name"] = frame["name"]
		result["data"] = frame["data"]
	}
	if errMsg != "" {
		result["error"] = errMsg
	}
	return js.ValueOf(result)
}
