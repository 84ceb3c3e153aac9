// Package scanner rebuilds the library document from a directory tree laid
// out as one directory per field.
package scanner // import "github.com/Xunop/e-library/internal/scanner"

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-library/internal/config"
	"github.com/Xunop/e-library/internal/log"
	"github.com/Xunop/e-library/internal/model"
	"github.com/Xunop/e-library/internal/util"
	"github.com/Xunop/e-library/internal/util/parsers/epub"
	"github.com/Xunop/e-library/internal/worker"
)

const unknownAuthor = "Unknown"

var (
	tagPattern  = regexp.MustCompile(`\[([^\]]+)\]`)
	idSanitizer = regexp.MustCompile(`[^a-z0-9]`)
	spaceSquash = regexp.MustCompile(`\s+`)
)

type Scanner struct {
	root string
	opts *config.Options
	now  func() time.Time
}

func New(root string, opts *config.Options) *Scanner {
	return &Scanner{root: root, opts: opts, now: time.Now}
}

// Scan parses every supported file found one level below each field
// directory. Files that fail to parse are skipped. The order of the books is
// fields sorted by directory name, then files sorted by name.
func (s *Scanner) Scan(ctx context.Context) (*model.Library, error) {
	jobs, err := s.collect()
	if err != nil {
		return nil, err
	}

	today := s.now().Format("2006-01-02")
	pool := worker.NewPool(ctx, s.opts.WorkerPoolSize, func(ctx context.Context, job model.Job) (*model.Book, error) {
		return s.parse(job, today)
	})
	go func() {
		defer pool.Close()
		for _, job := range jobs {
			pool.Push(job)
		}
	}()

	books := make([]*model.Book, len(jobs))
	failed := 0
	for result := range pool.Results() {
		if result.Err != nil {
			failed++
			continue
		}
		books[result.Job.ID-1] = result.Book
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "scan interrupted")
	}

	library := model.NewLibrary()
	for _, book := range books {
		if book != nil {
			library.Books = append(library.Books, book)
		}
	}
	library.GeneratedAt = s.now().UTC().Format(time.RFC3339)
	library.Summarize()

	log.Info("Scan finished",
		zap.String("root", s.root),
		zap.Int("books", len(library.Books)),
		zap.Int("fields", len(library.Fields)),
		zap.Int("failed", failed))
	return library, nil
}

// collect lists the files to parse. Job.ID is the running index of the file.
func (s *Scanner) collect() ([]model.Job, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read books folder %s", s.root)
	}

	var jobs []model.Job
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := entry.Name()
		files, err := os.ReadDir(filepath.Join(s.root, dir))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read field folder %s", dir)
		}

		field := FieldName(dir)
		count := 0
		for _, file := range files {
			if !file.Type().IsRegular() || !s.opts.IsSupportedType(util.FileExt(file.Name())) {
				continue
			}
			count++
			jobs = append(jobs, model.Job{
				ID:       len(jobs) + 1,
				Field:    field,
				FieldDir: dir,
				Filename: file.Name(),
				Path:     filepath.Join(s.root, dir, file.Name()),
				Status:   model.JobStatusPending,
			})
		}
		log.Debug("Scanned field", zap.String("field", field), zap.Int("files", count))
	}
	return jobs, nil
}

func (s *Scanner) parse(job model.Job, today string) (*model.Book, error) {
	info, err := os.Stat(job.Path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to stat %s", job.Path)
	}

	title, author := ParseFilename(job.Filename)
	tags := ExtractTags(job.Filename, job.Field)

	if util.FileExt(job.Filename) == "epub" {
		if book, err := epub.Open(job.Path); err != nil {
			log.Warn("Unable to read epub metadata", zap.String("path", job.Path), zap.Error(err))
		} else {
			if v := strings.TrimSpace(book.GetTitle()); v != "" {
				title = v
			}
			if v := strings.TrimSpace(book.GetAuthor()); v != "" {
				author = v
			}
			tags = uniqueTags(append(tags, book.GetSubjects()...))
			book.Close()
		}
	}

	return &model.Book{
		ID:        BookID(job.FieldDir, job.ID),
		Title:     title,
		Author:    author,
		Field:     job.Field,
		Tags:      tags,
		FileSize:  util.FormatFileSize(info.Size()),
		Type:      FileType(job.Filename),
		Filename:  job.Filename,
		Path:      job.FieldDir + "/" + job.Filename,
		AddedDate: today,
	}, nil
}

// FieldName turns a directory name like "real_analysis" into "Real Analysis".
func FieldName(dir string) string {
	words := strings.Split(strings.NewReplacer("_", " ", "-", " ").Replace(dir), " ")
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		if r != utf8.RuneError {
			words[i] = string(unicode.ToUpper(r)) + word[size:]
		}
	}
	return strings.Join(words, " ")
}

// ParseFilename reads "Title - Author.ext", falling back to the base name as
// title. Bracketed tags are not part of the title.
func ParseFilename(filename string) (title, author string) {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	name = strings.TrimSpace(spaceSquash.ReplaceAllString(tagPattern.ReplaceAllString(name, ""), " "))

	if before, after, ok := strings.Cut(name, " - "); ok {
		title, author = strings.TrimSpace(before), strings.TrimSpace(after)
		// "Title - Author - Edition" keeps only the author part
		author, _, _ = strings.Cut(author, " - ")
		author = strings.TrimSpace(author)
	} else {
		title = name
	}
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}
	if author == "" {
		author = unknownAuthor
	}
	return title, author
}

// ExtractTags returns the tags listed as "[a, b]" in the file name followed
// by the field, without duplicates.
func ExtractTags(filename, field string) []string {
	var tags []string
	if m := tagPattern.FindStringSubmatch(filename); m != nil {
		tags = util.SplitTags(m[1])
	}
	return uniqueTags(append(tags, field))
}

func uniqueTags(tags []string) []string {
	unique := make([]string, 0, len(tags))
	for _, tag := range tags {
		if !slices.Contains(unique, tag) {
			unique = append(unique, tag)
		}
	}
	return unique
}

func BookID(fieldDir string, index int) string {
	return idSanitizer.ReplaceAllString(strings.ToLower(fieldDir), "_") + "_" + strconv.Itoa(index)
}

func FileType(filename string) string {
	switch util.FileExt(filename) {
	case "txt", "md":
		return "note"
	case "doc", "docx":
		return "article"
	default:
		return "book"
	}
}
