package extract

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// readPDF extracts the plain text layer. The parser panics on some
// malformed files; those panics become errors.
func (s *Service) readPDF(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf text: %w", err)
	}
	return readLimited(plain, s.maxBytes)
}
