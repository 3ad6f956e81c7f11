package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"time"

	"github.com/lysyi3m/shopify-rss/app/catalog"
	"golang.org/x/text/currency"
)

const (
	DefaultTitle       = "Store Products"
	DefaultDescription = "All products in our store"
	DefaultLink        = "https://your-store.myshopify.com"
	DefaultLanguage    = "tr"

	mediaNamespace      = "http://search.yahoo.com/mrss/"
	dublinCoreNamespace = "http://purl.org/dc/elements/1.1/"
	imageMimeType       = "image/jpeg"
	generatorName       = "Shopify-RSS"
)

var priceCurrency = currency.MustParseISO("TRY")

type Generator struct {
	version string
	now     func() time.Time
}

func NewGenerator(version string) *Generator {
	return &Generator{
		version: version,
		now:     time.Now,
	}
}

// Run renders products as an RSS 2.0 document, one item per product in input order.
func (g *Generator) Run(products []catalog.Product, ch Channel) (string, error) {
	ch = ch.withDefaults()

	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(fmt.Sprintf(`<rss version="2.0" xmlns:media="%s" xmlns:dc="%s">`, mediaNamespace, dublinCoreNamespace))
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", ch.Title, 4)
	g.writeElement(&buf, "description", ch.Description, 4)
	g.writeElement(&buf, "link", ch.Link, 4)
	g.writeElement(&buf, "language", ch.Language, 4)
	g.writeElement(&buf, "lastBuildDate", formatDate(g.now()), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("%s/%s", generatorName, cmp.Or(g.version, "dev")), 4)

	for _, product := range products {
		g.writeItem(&buf, product, ch)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, product catalog.Product, ch Channel) {
	link := productLink(ch.Link, product.Handle)

	buf.WriteString("    <item>\n")

	g.writeElement(buf, "title", product.Title, 6)
	g.writeElement(buf, "description", cleanDescription(product.DescriptionHTML), 6)
	g.writeElement(buf, "link", link, 6)

	buf.WriteString(`      <guid isPermaLink="true">`)
	xml.EscapeText(buf, []byte(link))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "pubDate", formatDate(product.UpdatedAt), 6)
	g.writeElement(buf, "dc:creator", ch.Title, 6)

	if len(product.Images) > 0 {
		for _, image := range product.Images {
			buf.WriteString(fmt.Sprintf("      <media:content url=\"%s\" type=\"%s\" medium=\"image\" />\n",
				html.EscapeString(image.URL), imageMimeType))
		}
		buf.WriteString(fmt.Sprintf("      <media:thumbnail url=\"%s\" />\n",
			html.EscapeString(product.Images[0].URL)))
	}

	// Only the first variant is priced.
	if len(product.Variants) > 0 {
		buf.WriteString(fmt.Sprintf("      <media:price currency=\"%s\">", priceCurrency.String()))
		xml.EscapeText(buf, []byte(product.Variants[0].Price))
		buf.WriteString("</media:price>\n")
	}

	if product.ProductType != "" {
		g.writeElement(buf, "category", product.ProductType, 6)
	}

	for _, tag := range splitTags(product.Tags) {
		g.writeElement(buf, "dc:subject", tag, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func productLink(base, handle string) string {
	return fmt.Sprintf("%s/products/%s", base, handle)
}

// formatDate renders t in RFC 1123 form with a GMT zone, e.g. "Tue, 05 Mar 2024 10:20:30 GMT".
func formatDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}
