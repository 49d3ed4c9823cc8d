package flow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/browser/browsertest"
	"github.com/hairizuanbinnoorazman/synthetic-monitor/flow"
)

func TestWithinFrame(t *testing.T) {
	frame := browser.ByTagName("iframe")
	inner := browser.ByText("Welcome,")
	bodyErr := errors.New("dashboard not rendered")

	tests := []struct {
		name    string
		body    func(ctx context.Context, page *browsertest.Page) error
		wantErr error
	}{
		{
			name: "body sees frame content",
			body: func(ctx context.Context, page *browsertest.Page) error {
				_, err := page.Probe(ctx, inner)
				return err
			},
		},
		{
			name: "body fails",
			body: func(ctx context.Context, page *browsertest.Page) error {
				return bodyErr
			},
			wantErr: bodyErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			page := browsertest.NewPage()
			page.AddActionable(frame)
			page.Add(inner, &browsertest.Element{Frame: frame})

			err := flow.WithinFrame(ctx, page, frame, func() error {
				assert.True(t, page.InFrame())
				return tt.body(ctx, page)
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.False(t, page.InFrame())
			_, err = page.Probe(ctx, inner)
			assert.ErrorIs(t, err, browser.ErrNoSuchElement)
		})
	}
}

func TestWithinFrame_ExitsOnPanic(t *testing.T) {
	page := browsertest.NewPage()
	frame := browser.ByTagName("iframe")
	page.AddActionable(frame)

	assert.Panics(t, func() {
		_ = flow.WithinFrame(context.Background(), page, frame, func() error {
			panic("boom")
		})
	})
	assert.False(t, page.InFrame())
}

func TestWithinFrame_MissingFrame(t *testing.T) {
	page := browsertest.NewPage()
	called := false

	err := flow.WithinFrame(context.Background(), page, browser.ByTagName("iframe"), func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, browser.ErrNoSuchElement)
	assert.False(t, called)
	assert.Empty(t, page.Ops())
}
