package epub

// Container is META-INF/container.xml, it points at the package document
type Container struct {
	Rootfile Rootfile `xml:"rootfiles>rootfile" json:"rootfile"`
}

type Rootfile struct {
	Fullpath  string `xml:"full-path,attr" json:"full_path"`
	MediaType string `xml:"media-type,attr" json:"media_type"`
}

// Opf is the package document, only the parts the library reads are mapped
type Opf struct {
	Metadata Metadata   `xml:"metadata" json:"metadata"`
	Manifest []Manifest `xml:"manifest>item" json:"manifest"`
}

// Metadata holds the Dublin Core elements of the package
type Metadata struct {
	Title      []string     `xml:"title" json:"title"`
	Language   []string     `xml:"language" json:"language"`
	Identifier []Identifier `xml:"identifier" json:"identifier"`
	Creator    []Author     `xml:"creator" json:"creator"`
	Subject    []string     `xml:"subject" json:"subject"`
	Publisher  []string     `xml:"publisher" json:"publisher"`
}

type Identifier struct {
	Data   string `xml:",chardata" json:"data"`
	ID     string `xml:"id,attr" json:"id"`
	Scheme string `xml:"scheme,attr" json:"scheme"`
}

type Author struct {
	Data   string `xml:",chardata" json:"author"`
	FileAs string `xml:"file-as,attr" json:"file_as"`
	Role   string `xml:"role,attr" json:"role"`
}

type Manifest struct {
	ID        string `xml:"id,attr" json:"id"`
	Href      string `xml:"href,attr" json:"href"`
	MediaType string `xml:"media-type,attr" json:"type"`
}
