package elo

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"console-warden/internal/domain"
)

// ParseProfile extracts the five per-mode ratings from a profile page.
// The page lists one table row per mode with the mode token in the
// first cell and the rating in the second.
func ParseProfile(r io.Reader) (*domain.EloRecord, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var rec domain.EloRecord
	var traverse func(*html.Node)

	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			if isRatingRow(n) {
				mode, rating := extractRating(n)
				if rating > 0 {
					applyRating(&rec, mode, rating)
				}
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}

	traverse(doc)

	if rec == (domain.EloRecord{}) {
		return nil, fmt.Errorf("no ratings found in profile page")
	}
	return &rec, nil
}

func isRatingRow(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" && (attr.Val == "Odd" || attr.Val == "Even") {
			return true
		}
	}
	return false
}

func extractRating(tr *html.Node) (domain.GameMode, int) {
	var cells []*html.Node

	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "td" {
			cells = append(cells, c)
		}
	}

	if len(cells) < 2 {
		return "", 0
	}

	token := strings.ToLower(strings.TrimSpace(getTextContent(cells[0])))
	mode, ok := domain.ParseGameMode(token)
	if !ok {
		return "", 0
	}

	rating, err := strconv.Atoi(strings.TrimSpace(getTextContent(cells[1])))
	if err != nil {
		return "", 0
	}

	return mode, rating
}

func applyRating(rec *domain.EloRecord, mode domain.GameMode, rating int) {
	switch mode {
	case domain.ModeDuel:
		rec.Duel = rating
	case domain.ModeFFA:
		rec.FFA = rating
	case domain.ModeTDM:
		rec.TDM = rating
	case domain.ModeCA:
		rec.CA = rating
	case domain.ModeCTF:
		rec.CTF = rating
	}
}

func getTextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text.WriteString(getTextContent(c))
	}

	return text.String()
}
