package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const epubBlockSelector = "h1, h2, h3, h4, h5, h6, p, li, blockquote, pre, dt, dd"

type epubContainer struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

type epubPackage struct {
	Manifest []struct {
		ID        string `xml:"id,attr"`
		Href      string `xml:"href,attr"`
		MediaType string `xml:"media-type,attr"`
	} `xml:"manifest>item"`
	Spine []struct {
		IDRef string `xml:"idref,attr"`
	} `xml:"spine>itemref"`
}

// openEPUB reads chapters in spine order. Each chapter starts on a new page
// and long chapters continue over as many pages as they need.
func openEPUB(name string, data []byte) (*flowDocument, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open epub archive: %w", err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	var container epubContainer
	if err := decodeXML(files, "META-INF/container.xml", &container); err != nil {
		return nil, err
	}
	if len(container.Rootfiles) == 0 {
		return nil, fmt.Errorf("epub container lists no rootfile")
	}
	opfPath := container.Rootfiles[0].FullPath
	var pkg epubPackage
	if err := decodeXML(files, opfPath, &pkg); err != nil {
		return nil, err
	}

	hrefs := make(map[string]string, len(pkg.Manifest))
	for _, item := range pkg.Manifest {
		hrefs[item.ID] = path.Join(path.Dir(opfPath), item.Href)
	}

	var pages [][]string
	for _, ref := range pkg.Spine {
		href, ok := hrefs[ref.IDRef]
		if !ok {
			continue
		}
		f, ok := files[href]
		if !ok {
			continue
		}
		blocks, err := chapterBlocks(f)
		if err != nil {
			return nil, fmt.Errorf("chapter %s: %w", href, err)
		}
		if len(blocks) == 0 {
			continue
		}
		var lines []string
		for i, block := range blocks {
			if i > 0 {
				lines = append(lines, "")
			}
			lines = append(lines, wrapLines(block)...)
		}
		pages = append(pages, paginate(lines)...)
	}
	return &flowDocument{name: name, kind: KindEPUB, pages: pages}, nil
}

func chapterBlocks(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	doc, err := goquery.NewDocumentFromReader(rc)
	if err != nil {
		return nil, err
	}
	var blocks []string
	doc.Find(epubBlockSelector).Each(func(_ int, s *goquery.Selection) {
		// Nested blocks (a p inside an li) are picked up on their own.
		if s.Find(epubBlockSelector).Length() > 0 {
			return
		}
		text := strings.TrimSpace(extraneousWhitespace.ReplaceAllString(s.Text(), " "))
		if text != "" {
			blocks = append(blocks, text)
		}
	})
	return blocks, nil
}

func decodeXML(files map[string]*zip.File, name string, v any) error {
	f, ok := files[name]
	if !ok {
		return fmt.Errorf("epub missing %s", name)
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}
