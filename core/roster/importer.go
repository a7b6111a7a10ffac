package roster

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// DefaultClassLabel is used when a row carries neither grade nor section.
const DefaultClassLabel = "عام"

// headerScanLimit caps how many leading lines are inspected for a header row.
const headerScanLimit = 30

// Column label synonyms, matched as substrings of a lowercased cell.
// Exported files from student-information systems are wildly inconsistent;
// substring matching over a small synonym set beats exact headers here.
var (
	nameSynonyms    = []string{"اسم الطالب", "أسم الطالب", "الاسم", "اسم", "name", "student"}
	phoneSynonyms   = []string{"جوال", "هاتف", "ولي", "phone", "mobile", "guardian"}
	gradeSynonyms   = []string{"صف", "المرحلة", "grade", "level"}
	sectionSynonyms = []string{"فصل", "شعبة", "section", "class"}
)

// columnLayout maps column roles to indices; -1 means absent.
type columnLayout struct {
	name    int
	phone   int
	grade   int
	section int
}

// defaultLayout is the fixed fallback order when no header row is found.
func defaultLayout() columnLayout {
	return columnLayout{name: 0, phone: 1, grade: 2, section: 3}
}

// Staging is the outcome of parsing one roster file: records to be committed
// plus the count of rows skipped by validation or de-duplication.
type Staging struct {
	Classes  []ClassGroup
	Students []Student
	Skipped  int
}

// Report summarizes a committed import.
type Report struct {
	ClassesAdded  int `json:"classes_added"`
	StudentsAdded int `json:"students_added"`
	RowsSkipped   int `json:"rows_skipped"`
}

// StageCSV parses a delimited roster export and folds its rows into new
// class and student records, de-duplicating against the given existing
// tenant data. A malformed row is skipped, never fatal; only a read failure
// aborts the whole import.
func StageCSV(r io.Reader, schoolID string, existingClasses []ClassGroup, existingStudents []Student) (Staging, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Staging{}, errors.Wrap(err, "reading roster file")
	}
	lines := strings.Split(string(raw), "\n")
	return stageLines(lines, schoolID, existingClasses, existingStudents), nil
}

func stageLines(lines []string, schoolID string, existingClasses []ClassGroup, existingStudents []Student) Staging {
	cols := defaultLayout()
	headerLabel := ""
	dataStart := 0

	limit := headerScanLimit
	if len(lines) < limit {
		limit = len(lines)
	}
	for i := 0; i < limit; i++ {
		cells := splitLine(lines[i])
		if idx := indexMatching(cells, nameSynonyms); idx >= 0 {
			cols = columnLayout{
				name:    idx,
				phone:   indexMatching(cells, phoneSynonyms),
				grade:   indexMatching(cells, gradeSynonyms),
				section: indexMatching(cells, sectionSynonyms),
			}
			headerLabel = cells[idx]
			dataStart = i + 1
			break
		}
	}

	// class resolution map seeded with existing classes, keyed by trimmed name
	classByName := make(map[string]ClassGroup, len(existingClasses))
	for _, cg := range existingClasses {
		classByName[strings.TrimSpace(cg.Name)] = cg
	}
	seenStudents := make(map[string]bool, len(existingStudents))
	for _, st := range existingStudents {
		seenStudents[st.Name] = true
	}

	var staged Staging
	for _, line := range lines[dataStart:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := splitLine(line)
		if len(cells) <= cols.name {
			staged.Skipped++
			continue
		}
		name := cells[cols.name]
		if !validStudentName(name, headerLabel) {
			staged.Skipped++
			continue
		}
		if seenStudents[name] {
			// exact-name duplicate, against tenant data or this run
			staged.Skipped++
			continue
		}

		grade := cellAt(cells, cols.grade)
		section := cellAt(cells, cols.section)
		label := classLabel(grade, section)

		cg, ok := classByName[label]
		if !ok {
			cg = ClassGroup{
				ID:       uuid.NewString(),
				SchoolID: schoolID,
				Name:     label,
				Grade:    grade,
			}
			classByName[label] = cg
			staged.Classes = append(staged.Classes, cg)
		}

		staged.Students = append(staged.Students, Student{
			ID:          uuid.NewString(),
			SchoolID:    schoolID,
			Name:        name,
			ParentPhone: cellAt(cells, cols.phone),
			ClassID:     cg.ID,
		})
		seenStudents[name] = true
	}
	return staged
}

// splitLine detects the delimiter per line (semicolon when present, else
// comma) and strips quoting and CR artifacts per cell. Mixed-delimiter files
// are handled line by line on purpose.
func splitLine(line string) []string {
	line = strings.TrimRight(line, "\r")
	sep := ","
	if strings.Contains(line, ";") {
		sep = ";"
	}
	cells := strings.Split(line, sep)
	for i := range cells {
		cells[i] = cleanCell(cells[i])
	}
	return cells
}

func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	return strings.TrimSpace(s)
}

func indexMatching(cells []string, synonyms []string) int {
	for i, cell := range cells {
		lc := strings.ToLower(cell)
		for _, syn := range synonyms {
			if strings.Contains(lc, syn) {
				return i
			}
		}
	}
	return -1
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}

func validStudentName(name, headerLabel string) bool {
	if utf8.RuneCountInString(name) < 2 {
		return false
	}
	if !core.HasLetter(name) {
		return false
	}
	if headerLabel != "" && name == headerLabel {
		return false
	}
	return true
}

// classLabel combines grade and section into the class name: a shortened
// grade (its first two words) joined with the section, falling back to
// section only, then grade only, then the general default.
func classLabel(grade, section string) string {
	grade = strings.TrimSpace(grade)
	section = strings.TrimSpace(section)
	switch {
	case grade != "" && section != "":
		return shortGrade(grade) + " - " + section
	case section != "":
		return section
	case grade != "":
		return grade
	default:
		return DefaultClassLabel
	}
}

func shortGrade(grade string) string {
	words := strings.Fields(grade)
	if len(words) > 2 {
		words = words[:2]
	}
	return strings.Join(words, " ")
}
