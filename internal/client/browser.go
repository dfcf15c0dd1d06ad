package client

import (
	"context"
	"os/exec"
	"runtime"
)

// LinkOpener opens an outreach link in a new browsing context. Success
// means the context was obtained, nothing more: whether the message is
// ever delivered, read, or even deliverable is invisible from here.
type LinkOpener interface {
	Open(ctx context.Context, link string) error
}

// BrowserOpener launches the operator's default browser on a link.
type BrowserOpener struct {
	command string
	args    []string
}

func NewBrowserOpener() *BrowserOpener {
	switch runtime.GOOS {
	case "darwin":
		return &BrowserOpener{command: "open"}
	case "windows":
		return &BrowserOpener{command: "rundll32", args: []string{"url.dll,FileProtocolHandler"}}
	default:
		return &BrowserOpener{command: "xdg-open"}
	}
}

func (b *BrowserOpener) Open(ctx context.Context, link string) error {
	args := append(append([]string{}, b.args...), link)
	cmd := exec.CommandContext(ctx, b.command, args...)
	if err := cmd.Start(); err != nil {
		return err
	}

	// Reap the child; its exit status tells us nothing about delivery.
	go func() { _ = cmd.Wait() }()
	return nil
}
