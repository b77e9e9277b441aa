package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Extract parses HTML and returns the page title and the normalized body
// text: script/style/noscript subtrees dropped, element texts joined with
// single spaces, all whitespace runs collapsed.
func Extract(htmlText string) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlText))
	if err != nil {
		return "", "", err
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript").Remove()

	var parts []string
	for _, n := range doc.Find("body").Nodes {
		collectText(n, &parts)
	}
	text = strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	return title, text, nil
}

// collectText appends the data of every text node under n.
func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		*parts = append(*parts, n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// HashText returns the lowercase hex SHA-256 of the UTF-8 bytes of text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
