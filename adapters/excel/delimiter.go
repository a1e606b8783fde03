package excel

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"
)

// candidateDelimiters are tried in order; ties keep this order
var candidateDelimiters = []rune{',', ';', '\t', '|'}

// GuessDelimiter picks the delimiter that splits the sample lines into the
// most consistent number of fields. A delimiter that never splits a line
// scores zero; when nothing scores, comma is returned.
func GuessDelimiter(sample []byte, maxLines int) rune {
	lines := sampleLines(sample, maxLines)
	if len(lines) == 0 {
		return ','
	}

	best, bestScore := ',', 0.0
	for _, d := range candidateDelimiters {
		if score := delimiterScore(lines, d); score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

// delimiterScore rewards a field count above one that most lines share
func delimiterScore(lines []string, d rune) float64 {
	counts := make(map[int]int)
	for _, line := range lines {
		r := csv.NewReader(strings.NewReader(line))
		r.Comma = d
		r.LazyQuotes = true
		r.FieldsPerRecord = -1
		fields, err := r.Read()
		if err != nil {
			continue
		}
		counts[len(fields)]++
	}

	modeFields, modeCount := 0, 0
	for fields, count := range counts {
		if count > modeCount || (count == modeCount && fields > modeFields) {
			modeFields, modeCount = fields, count
		}
	}
	if modeFields < 2 {
		return 0
	}
	consistency := float64(modeCount) / float64(len(lines))
	// squared so that a ragged split loses to a clean one with fewer fields
	return consistency * consistency * float64(modeFields)
}

func sampleLines(sample []byte, maxLines int) []string {
	scanner := bufio.NewScanner(bytes.NewReader(sample))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if maxLines > 0 && len(lines) >= maxLines {
			break
		}
	}
	return lines
}

// utf8BOM is stripped from the start of delimited files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, utf8BOM)
}

// readDelimited parses delimited text with the given delimiter. Rows that
// are entirely blank are skipped.
func readDelimited(data []byte, delimiter rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var records [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if isBlankRecord(record) {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
