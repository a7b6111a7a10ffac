package roster

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

// StageXLSX flattens the first sheet of an Excel roster export into
// CSV-shaped lines and feeds them through the same staging pipeline, so
// header detection, class synthesis and de-duplication behave identically
// for both formats.
func StageXLSX(r io.Reader, schoolID string, existingClasses []ClassGroup, existingStudents []Student) (Staging, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Staging{}, errors.Wrap(err, "opening excel file")
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return Staging{}, errors.New("excel file does not contain any sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return Staging{}, errors.Wrapf(err, "reading sheet %s", sheet)
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, ","))
	}
	return stageLines(lines, schoolID, existingClasses, existingStudents), nil
}
