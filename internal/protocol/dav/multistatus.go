package dav

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/wantpinow/sandboxdav/pkg/metadata"
)

// multistatusEntry pairs an href with the entry it describes. Meta is nil
// for the implicit root directory, which exists without a backing entry.
type multistatusEntry struct {
	Href string
	Meta *metadata.FileEntry
}

// responseXML is one <d:response> element of a 207 Multi-Status body,
// per RFC 4918. The d: prefix is bound to DAV: by the enclosing
// <d:multistatus> element written in multistatusBody.
type responseXML struct {
	XMLName  xml.Name      `xml:"d:response"`
	Href     string        `xml:"d:href"`
	Propstat []propstatXML `xml:"d:propstat"`
}

type propstatXML struct {
	// Prop relies on each propertyXML carrying its own fully qualified
	// XMLName; the placeholder after > is overridden per element.
	Prop   []propertyXML `xml:"d:prop>_ignored_"`
	Status string        `xml:"d:status"`
}

type propertyXML struct {
	XMLName  xml.Name
	InnerXML []byte `xml:",innerxml"`
}

func property(name, inner string) propertyXML {
	return propertyXML{
		XMLName:  xml.Name{Local: name},
		InnerXML: []byte(inner),
	}
}

// escapeXML escapes text destined for an InnerXML field, which the encoder
// writes through verbatim.
func escapeXML(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return ""
	}
	return buf.String()
}

func httpDate(t time.Time) string {
	return t.UTC().Format(http.TimeFormat)
}

// responseForEntry builds the <d:response> for one resource. Directories
// (and the nil-meta root) advertise the collection resource type and get a
// slash-terminated href.
func responseForEntry(e multistatusEntry) responseXML {
	isDir := e.Meta == nil || e.Meta.IsDir()

	resourceType := property("d:resourcetype", "")
	displayName := property("d:displayname", "")
	lastModified := property("d:getlastmodified", httpDate(time.Now()))
	contentLength := property("d:getcontentlength", "0")

	if isDir {
		resourceType.InnerXML = []byte("<d:collection/>")
	}
	if e.Meta != nil {
		displayName.InnerXML = []byte(escapeXML(e.Meta.Name))
		lastModified.InnerXML = []byte(httpDate(e.Meta.Mtime))
		contentLength.InnerXML = []byte(fmt.Sprintf("%d", e.Meta.Size))
	}

	href := e.Href
	if isDir && !strings.HasSuffix(href, "/") {
		href += "/"
	}

	return responseXML{
		Href: href,
		Propstat: []propstatXML{{
			Prop:   []propertyXML{resourceType, displayName, lastModified, contentLength},
			Status: "HTTP/1.1 200 OK",
		}},
	}
}

// multistatusBody renders the full 207 Multi-Status document for a set of
// resources.
func multistatusBody(entries []multistatusEntry) ([]byte, error) {
	var inner bytes.Buffer
	for _, e := range entries {
		resp := responseForEntry(e)
		encoded, err := xml.Marshal(&resp)
		if err != nil {
			return nil, fmt.Errorf("failed to encode multistatus response for %s: %w", e.Href, err)
		}
		inner.Write(encoded)
	}

	var body bytes.Buffer
	body.WriteString(xml.Header)
	body.WriteString(`<d:multistatus xmlns:d="DAV:">`)
	body.Write(inner.Bytes())
	body.WriteString(`</d:multistatus>`)
	return body.Bytes(), nil
}
