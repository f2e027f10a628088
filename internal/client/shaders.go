package client

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// Shader source locations relative to the server root.
const (
	VertexShaderPath   = "/shaders/ocean-vertex.glsl"
	FragmentShaderPath = "/shaders/ocean-fragment.glsl"
)

// Uniforms are the initial values for the ocean shader program.
type Uniforms struct {
	Time              float32
	WaveStrength      float32
	WaveFrequency     float32
	WaterColorDeep    uint32
	WaterColorShallow uint32
	FoamColor         uint32
	SunDirection      [3]float32
	FoamThreshold     float32
	Shininess         float32
}

// DefaultUniforms returns the starting ocean look.
func DefaultUniforms() Uniforms {
	return Uniforms{
		WaveStrength:      0.8,
		WaveFrequency:     0.15,
		WaterColorDeep:    0x1a5f8a,
		WaterColorShallow: 0x4db8e8,
		FoamColor:         0xffffff,
		// (0.5, 1, 0.5) normalized
		SunDirection:  [3]float32{0.40824829, 0.81649658, 0.40824829},
		FoamThreshold: 0.65,
		Shininess:     25,
	}
}

// Shaders is a loaded ocean shader pair.
type Shaders struct {
	Vertex   string
	Fragment string
	Uniforms Uniforms
}

// LoadShaders fetches the vertex and fragment programs in parallel. Both are
// required: if either fetch fails the pair is discarded and the error is
// returned, and the caller should fall back to a plain material.
func (c *HTTPClient) LoadShaders(ctx context.Context) (*Shaders, error) {
	var vertex, fragment string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		src, err := c.fetchText(gctx, VertexShaderPath)
		vertex = src
		return err
	})
	g.Go(func() error {
		src, err := c.fetchText(gctx, FragmentShaderPath)
		fragment = src
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load ocean shaders: %w", err)
	}

	return &Shaders{Vertex: vertex, Fragment: fragment, Uniforms: DefaultUniforms()}, nil
}

func (c *HTTPClient) fetchText(ctx context.Context, path string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, c.url(path), nil, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: HTTP %d", path, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("fetch %s: empty shader source", path)
	}
	return string(data), nil
}
