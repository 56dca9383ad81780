package main

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"

	"flowire/workflow"
)

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

// copyDocument puts the document JSON on the system clipboard.
func copyDocument(w workflow.Workflow) error {
	data, err := workflow.Marshal(w)
	if err != nil {
		return err
	}
	if err := clipboard.WriteAll(string(data)); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// pasteDocument reads a document from the clipboard. Malformed parts are
// dropped and logged; an empty clipboard is an error.
func pasteDocument(log logrus.FieldLogger) (workflow.Workflow, error) {
	text, err := readClipboardText()
	if err != nil {
		return workflow.New(), fmt.Errorf("read clipboard: %w", err)
	}
	text = cleanClipboardText(text)
	if text == "" {
		return workflow.New(), fmt.Errorf("clipboard is empty")
	}
	return workflow.Decode([]byte(text), log), nil
}

func isHTML(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<") &&
		(strings.Contains(text, "<html") || strings.Contains(text, "<body") || strings.Contains(text, "<div"))
}

func extractTextFromHTML(html string) string {
	var result strings.Builder
	result.Grow(len(html))
	inTag := false
	for _, r := range html {
		if r == '<' {
			inTag = true
			continue
		}
		if r == '>' {
			inTag = false
			continue
		}
		if !inTag {
			result.WriteRune(r)
		}
	}
	text := result.String()
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&quot;", "\"")
	text = strings.ReplaceAll(text, "&#39;", "'")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	return text
}

// cleanClipboardText unwraps HTML clipboards and drops a byte order mark and
// control characters other than whitespace.
func cleanClipboardText(text string) string {
	if isHTML(text) {
		text = extractTextFromHTML(text)
	}
	text = strings.TrimPrefix(text, "\ufeff")
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}
