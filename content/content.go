// Package content extracts the textual side of a page: title, h1-h3
// headlines, main text and a Markdown rendering. It runs over the rendered
// markup so script-inserted content is included.
package content

import (
	"log/slog"
	nurl "net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"github.com/pagepix/pagepix/models"
)

// minReadableLength is the minimum readability text length considered a
// successful extraction; below it the tokenizer fallback runs instead.
const minReadableLength = 50

// Extractor turns rendered HTML into PageContent. The Markdown converter is
// built once and reused; it is goroutine-safe.
type Extractor struct {
	mdConverter *converter.Converter
}

func NewExtractor() *Extractor {
	return &Extractor{
		mdConverter: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(
					table.WithCellPaddingBehavior(table.CellPaddingBehaviorMinimal),
				),
			),
		),
	}
}

// Options selects which content fields get filled. Title and headlines are
// always extracted; they are cheap.
type Options struct {
	Text     bool
	Markdown bool
}

// Extract parses rawHTML once and fills a PageContent. It never fails; any
// stage that chokes leaves its field empty with a log entry.
func (e *Extractor) Extract(rawHTML, pageURL string, opts Options) models.PageContent {
	var pc models.PageContent

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		slog.Warn("content: markup parse failed", "url", pageURL, "error", err)
		return pc
	}

	pc.Title = strings.TrimSpace(doc.Find("title").First().Text())
	pc.Headlines = extractHeadlines(doc, pageURL)

	if opts.Text {
		pc.Text = e.mainText(rawHTML, pageURL)
	}
	if opts.Markdown {
		md, err := e.mdConverter.ConvertString(rawHTML, converter.WithDomain(pageURL))
		if err != nil {
			slog.Warn("content: markdown conversion failed", "url", pageURL, "error", err)
		} else {
			pc.Markdown = md
		}
	}
	return pc
}

// extractHeadlines collects h1-h3 in document order. Headlines with an id
// also get an anchor link relative to the page URL.
func extractHeadlines(doc *goquery.Document, pageURL string) []models.Headline {
	var out []models.Headline
	doc.Find("h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}
		h := models.Headline{
			Text: text,
			Tag:  goquery.NodeName(sel),
			ID:   sel.AttrOr("id", ""),
		}
		if h.ID != "" {
			h.Anchor = pageURL + "#" + h.ID
		}
		out = append(out, h)
	})
	return out
}

// mainText runs the Mozilla Readability algorithm and falls back to a plain
// visible-text walk when readability fails or finds too little.
func (e *Extractor) mainText(rawHTML, pageURL string) string {
	parsed, err := nurl.Parse(pageURL)
	if err == nil {
		article, rerr := readability.FromReader(strings.NewReader(rawHTML), parsed)
		if rerr == nil {
			text := strings.TrimSpace(article.TextContent)
			if len(text) >= minReadableLength {
				return text
			}
		} else {
			slog.Debug("content: readability failed", "url", pageURL, "error", rerr)
		}
	}
	return visibleText(rawHTML)
}
