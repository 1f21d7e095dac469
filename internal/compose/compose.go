// Package compose substitutes finished fragments into the named slots of an
// HTML template and serializes the result deterministically.
package compose

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/net/html"

	nerrors "git.home.luguber.info/inful/newsletter/internal/errors"
	"git.home.luguber.info/inful/newsletter/internal/logfields"
)

// DefaultAttribute marks slot elements in the template.
const DefaultAttribute = "data-redeemer-bot"

// Kind selects how slot content replaces the element's children.
type Kind int

const (
	// KindText replaces the children with a single text node.
	KindText Kind = iota
	// KindMarkup parses the value as HTML in the context of the slot element.
	KindMarkup
)

// Content is the value destined for one slot.
type Content struct {
	Kind  Kind
	Value string
}

// Text returns plain-text slot content.
func Text(s string) Content { return Content{Kind: KindText, Value: s} }

// Markup returns inner-HTML slot content.
func Markup(s string) Content { return Content{Kind: KindMarkup, Value: s} }

// SlotMap maps slot keys to their content.
type SlotMap map[string]Content

// Keys returns the slot keys in sorted order.
func (m SlotMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Result is a composed document plus what happened to each slot.
type Result struct {
	HTML      string
	Matched   []string
	Unmatched []string
}

// Composer fills slots located by an exact attribute-value match.
type Composer struct {
	Attribute string
	Indent    string
	Logger    *slog.Logger
}

// New returns a composer for attribute with two-space indentation.
func New(attribute string) *Composer {
	if attribute == "" {
		attribute = DefaultAttribute
	}
	return &Composer{Attribute: attribute, Indent: "  "}
}

// Compose parses template once, replaces the content of every element whose
// slot attribute equals a key of slots, and pretty-prints the tree. Keys with
// no matching element are skipped and reported in Result.Unmatched; they are
// never an error. Slots are applied in sorted key order and the output is
// byte-identical for identical inputs.
func (c *Composer) Compose(template string, slots SlotMap) (*Result, error) {
	doc, err := html.Parse(strings.NewReader(template))
	if err != nil {
		return nil, nerrors.CompositionFailed(fmt.Errorf("parse template: %w", err))
	}

	targets := c.index(doc, slots)
	res := &Result{}
	for _, key := range slots.Keys() {
		nodes := targets[key]
		if len(nodes) == 0 {
			res.Unmatched = append(res.Unmatched, key)
			continue
		}
		if len(nodes) > 1 {
			c.logger().Warn("Slot matches more than one element; replacing all",
				logfields.Slot(key), slog.Int("elements", len(nodes)))
		}
		for _, n := range nodes {
			if err := replaceChildren(n, slots[key]); err != nil {
				return nil, nerrors.CompositionFailed(fmt.Errorf("slot %s: %w", key, err)).
					WithContext("slot", key)
			}
		}
		res.Matched = append(res.Matched, key)
	}

	var b strings.Builder
	if err := Pretty(&b, doc, c.Indent); err != nil {
		return nil, nerrors.CompositionFailed(fmt.Errorf("render document: %w", err))
	}
	res.HTML = b.String()
	return res, nil
}

// index collects slot elements for the requested keys in document order
// before any substitution happens.
func (c *Composer) index(doc *html.Node, slots SlotMap) map[string][]*html.Node {
	targets := make(map[string][]*html.Node)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if key, ok := getAttr(n, c.attribute()); ok {
				if _, wanted := slots[key]; wanted {
					targets[key] = append(targets[key], n)
				}
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(doc)
	return targets
}

func replaceChildren(n *html.Node, content Content) error {
	for ch := n.FirstChild; ch != nil; {
		next := ch.NextSibling
		n.RemoveChild(ch)
		ch = next
	}

	switch content.Kind {
	case KindText:
		if content.Value != "" {
			n.AppendChild(&html.Node{Type: html.TextNode, Data: content.Value})
		}
	case KindMarkup:
		nodes, err := html.ParseFragment(strings.NewReader(content.Value), n)
		if err != nil {
			return err
		}
		for _, ch := range nodes {
			n.AppendChild(ch)
		}
	default:
		return fmt.Errorf("unknown content kind %d", content.Kind)
	}
	return nil
}

func (c *Composer) attribute() string {
	if c.Attribute == "" {
		return DefaultAttribute
	}
	return c.Attribute
}

func (c *Composer) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func getAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}
