// File: internal/decision/request.go
package decision

import (
	"fmt"
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/snakepilot/api/schemas"
)

// json is a drop-in replacement for encoding/json.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Payload kinds.
const (
	KindSignals = "signals"
	KindFrame   = "frame"
)

const (
	contentTypeJSON   = "application/json"
	contentTypeBinary = "application/octet-stream"

	headerFrameWidth  = "X-Frame-Width"
	headerFrameHeight = "X-Frame-Height"
)

// Request is an encoded observation ready to be posted to the decision service.
type Request struct {
	Kind        string
	ContentType string
	Header      http.Header
	Body        []byte
}

// EncodeSignals serializes a signal bundle. Empty collections are sent as arrays.
func EncodeSignals(bundle schemas.SignalBundle) (Request, error) {
	body, err := json.Marshal(bundle.Normalized())
	if err != nil {
		return Request{}, fmt.Errorf("failed to marshal signal bundle: %w", err)
	}
	return Request{
		Kind:        KindSignals,
		ContentType: contentTypeJSON,
		Body:        body,
	}, nil
}

// EncodeFrame packs a raw RGBA capture. Dimensions travel in headers.
func EncodeFrame(frame schemas.Frame) (Request, error) {
	if !frame.Valid() {
		return Request{}, fmt.Errorf("frame buffer has %d bytes, expected %dx%dx4", len(frame.Pixels), frame.Width, frame.Height)
	}
	header := make(http.Header, 2)
	header.Set(headerFrameWidth, strconv.Itoa(frame.Width))
	header.Set(headerFrameHeight, strconv.Itoa(frame.Height))
	return Request{
		Kind:        KindFrame,
		ContentType: contentTypeBinary,
		Header:      header,
		Body:        frame.Pixels,
	}, nil
}

// DecodeFrame is the inverse of EncodeFrame, for services that accept pixel payloads.
func DecodeFrame(header http.Header, body []byte) (schemas.Frame, error) {
	width, err := strconv.Atoi(header.Get(headerFrameWidth))
	if err != nil {
		return schemas.Frame{}, fmt.Errorf("invalid %s header: %w", headerFrameWidth, err)
	}
	height, err := strconv.Atoi(header.Get(headerFrameHeight))
	if err != nil {
		return schemas.Frame{}, fmt.Errorf("invalid %s header: %w", headerFrameHeight, err)
	}
	frame := schemas.Frame{Width: width, Height: height, Pixels: body}
	if !frame.Valid() {
		return schemas.Frame{}, fmt.Errorf("frame body has %d bytes, expected %dx%dx4", len(body), width, height)
	}
	return frame, nil
}
