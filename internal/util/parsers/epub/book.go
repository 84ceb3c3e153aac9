package epub // import "github.com/Xunop/e-library/internal/util/parsers/epub"

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const mimetype = "application/epub+zip"

// Book is the main struct that holds the package information of an epub file
type Book struct {
	Opf       Opf       `json:"opf"`
	Container Container `json:"container"`
	Mimetype  string    `json:"mimetype"`

	fd *zip.ReadCloser
}

// Open opens the epub file and reads its package document
func Open(file string) (*Book, error) {
	fd, err := zip.OpenReader(file)
	if err != nil {
		return nil, err
	}

	b := &Book{fd: fd}
	if err := b.init(); err != nil {
		fd.Close()
		return nil, err
	}
	return b, nil
}

func (p *Book) init() error {
	m, err := p.readBytes("mimetype")
	if err != nil {
		return err
	}
	p.Mimetype = strings.TrimSpace(string(m))
	if p.Mimetype != mimetype {
		return fmt.Errorf("epub: invalid mimetype: %s", p.Mimetype)
	}

	if err := p.readXML("META-INF/container.xml", &p.Container); err != nil {
		return err
	}
	return p.readXML(p.Container.Rootfile.Fullpath, &p.Opf)
}

// Files returns a list of all the files in the epub
func (p *Book) Files() []string {
	var files []string
	for _, f := range p.fd.File {
		files = append(files, f.Name)
	}
	return files
}

// Close closes the epub file
func (p *Book) Close() error {
	return p.fd.Close()
}

func (p *Book) GetTitle() string {
	for _, title := range p.Opf.Metadata.Title {
		if title = strings.TrimSpace(title); title != "" {
			return title
		}
	}
	return ""
}

// GetAuthor returns the first creator with the author role, or without any role.
func (p *Book) GetAuthor() string {
	for _, author := range p.Opf.Metadata.Creator {
		if author.Role == "aut" || author.Role == "" {
			return strings.TrimSpace(author.Data)
		}
	}
	return ""
}

func (p *Book) GetSubjects() []string {
	subjects := make([]string, 0, len(p.Opf.Metadata.Subject))
	for _, subject := range p.Opf.Metadata.Subject {
		if subject = strings.TrimSpace(subject); subject != "" {
			subjects = append(subjects, subject)
		}
	}
	return subjects
}

// readXML reads the xml file with the given name and unmarshals it into the given interface
func (p *Book) readXML(n string, v interface{}) error {
	rc, err := p.open(n)
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

// readBytes reads the file with the given name and returns its content as a byte slice
func (p *Book) readBytes(n string) ([]byte, error) {
	rc, err := p.open(n)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// open opens the file with the given name
func (p *Book) open(n string) (io.ReadCloser, error) {
	for _, f := range p.fd.File {
		if f.Name == n {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("epub: file not found: %s", n)
}
