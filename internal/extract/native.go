package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	readability "github.com/go-shiori/go-readability"
	"github.com/ledongthuc/pdf"
)

// Native parses documents in process. PDF pages go through a pure Go
// reader; downloads that turned out to be HTML error pages are reduced
// to their readable article and rendered as markdown instead.
type Native struct{}

// NewNativeEngine constructs the in-process engine.
func NewNativeEngine() *Native {
	return &Native{}
}

// Name implements Engine.
func (n *Native) Name() string { return "native" }

// ExtractText implements Engine.
func (n *Native) ExtractText(ctx context.Context, path string) (string, error) {
	header, err := readHeader(path)
	if err != nil {
		return "", err
	}
	if looksLikeHTML(header) {
		return htmlText(path)
	}
	return pdfText(ctx, path)
}

// readHeader returns up to the first 512 bytes for content sniffing.
func readHeader(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	buf := make([]byte, 512)
	n, err := io.ReadFull(file, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return buf[:n], nil
}

func looksLikeHTML(header []byte) bool {
	if bytes.HasPrefix(header, []byte("%PDF-")) {
		return false
	}
	probe := bytes.ToLower(bytes.TrimLeft(header, " \t\r\n\xef\xbb\xbf"))
	markers := [][]byte{
		[]byte("<!doctype html"),
		[]byte("<html"),
		[]byte("<head"),
		[]byte("<body"),
	}
	for _, marker := range markers {
		if bytes.Contains(probe, marker) {
			return true
		}
	}
	return false
}

// pdfText concatenates the plain text of every page. The context is
// checked between pages so an abandoned call winds down at the deadline
// instead of grinding through the rest of the document.
func pdfText(ctx context.Context, path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var text strings.Builder
	pages := reader.NumPage()
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		text.WriteString(content)
		text.WriteByte('\n')
	}
	return text.String(), nil
}

// htmlText isolates the readable article and renders it as markdown.
// When readability cannot find an article the whole document is
// converted instead.
func htmlText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	content := ""
	title := ""
	article, err := readability.FromReader(bytes.NewReader(data), &url.URL{Scheme: "https", Host: "localhost"})
	if err == nil {
		content = article.Content
		title = strings.TrimSpace(article.Title)
	}
	if strings.TrimSpace(content) == "" {
		content = string(data)
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	if title != "" {
		markdown = "# " + title + "\n\n" + markdown
	}
	return markdown, nil
}
