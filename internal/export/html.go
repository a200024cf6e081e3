package export

import (
	"bytes"
	"fmt"
	"html"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const reportCSS = `body{font-family:-apple-system,"Segoe UI",Helvetica,Arial,sans-serif;margin:0;background:#f6f7f9;color:#1f2933}
#results{max-width:960px;margin:24px auto;padding:24px 32px;background:#fff;border:1px solid #d9dee5;border-radius:6px}
table{border-collapse:collapse;margin:8px 0 20px}th,td{border:1px solid #d9dee5;padding:4px 10px;text-align:left}
th{background:#eef1f5}img{max-width:100%}`

// HTML renders the report as a standalone page. The report body sits in
// #results, which the png capture screenshots.
func HTML(pkg Package) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	body := markdown.ToHTML(Markdown(pkg, true), p, renderer)

	var b bytes.Buffer
	fmt.Fprintf(&b, "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n<style>%s</style>\n</head>\n<body>\n<main id=\"results\">\n",
		html.EscapeString(pkg.Title), reportCSS)
	b.Write(body)
	b.WriteString("</main>\n</body>\n</html>\n")
	return b.Bytes()
}
