package client

import (
	"errors"
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// hiddenInputs collects name/value of every <input type="hidden"> in the page.
func hiddenInputs(r io.Reader) (url.Values, error) {
	values := url.Values{}
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return values, nil
			}
			return nil, z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			t := z.Token()
			if t.Data != "input" {
				continue
			}
			var name, value, typ string
			for _, a := range t.Attr {
				switch a.Key {
				case "name":
					name = a.Val
				case "value":
					value = a.Val
				case "type":
					typ = a.Val
				}
			}
			if name != "" && strings.EqualFold(typ, "hidden") {
				values.Set(name, value)
			}
		}
	}
}
