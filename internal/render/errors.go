package render

import "fmt"

// RenderError reports a failure while composing or encoding the canvas, for
// example tile bytes that do not decode. It fails the whole request.
type RenderError struct {
	Stage string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render failed at %s: %v", e.Stage, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// AssetError reports a marker asset that could not be loaded or rasterized.
// It is recovered locally by falling back to the vector marker and never
// fails a request.
type AssetError struct {
	Name string
	Path string
	Err  error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("marker asset %q (%s) unavailable: %v", e.Name, e.Path, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}
