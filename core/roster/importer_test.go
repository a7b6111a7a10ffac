package roster

import (
	"strings"
	"testing"
)

func stage(t *testing.T, csv string, classes []ClassGroup, students []Student) Staging {
	t.Helper()
	staged, err := StageCSV(strings.NewReader(csv), "school1", classes, students)
	if err != nil {
		t.Fatalf("StageCSV(): %v", err)
	}
	return staged
}

func TestStageCSV_endToEnd(t *testing.T) {
	csv := "اسم الطالب,جوال ولي الأمر,الصف,الفصل\n" +
		"أحمد محمد,0501111111,الصف الأول,1\n" +
		"سالم خالد,0502222222,الصف الأول,1\n"

	staged := stage(t, csv, nil, nil)

	if len(staged.Classes) != 1 {
		t.Fatalf("classes staged = %d; want 1", len(staged.Classes))
	}
	cg := staged.Classes[0]
	if cg.Name != "الصف الأول - 1" {
		t.Errorf("class name = %q; want %q", cg.Name, "الصف الأول - 1")
	}
	if len(staged.Students) != 2 {
		t.Fatalf("students staged = %d; want 2", len(staged.Students))
	}
	for _, st := range staged.Students {
		if st.ClassID != cg.ID {
			t.Errorf("student %q classID = %q; want %q", st.Name, st.ClassID, cg.ID)
		}
		if st.SchoolID != "school1" {
			t.Errorf("student %q schoolID = %q", st.Name, st.SchoolID)
		}
	}
	if staged.Students[0].Name != "أحمد محمد" || staged.Students[0].ParentPhone != "0501111111" {
		t.Errorf("first student = %+v", staged.Students[0])
	}
}

func TestStageCSV_headerColumnDetection(t *testing.T) {
	// name column sits at index 2, not the default 0
	csv := "الصف,الفصل,اسم الطالب,جوال\n" +
		"الصف الثاني,3,منى علي,0503333333\n"

	staged := stage(t, csv, nil, nil)

	if len(staged.Students) != 1 {
		t.Fatalf("students staged = %d; want 1", len(staged.Students))
	}
	if got := staged.Students[0].Name; got != "منى علي" {
		t.Errorf("name = %q; want value from column index 2", got)
	}
	if got := staged.Students[0].ParentPhone; got != "0503333333" {
		t.Errorf("phone = %q", got)
	}
	if got := staged.Classes[0].Name; got != "الصف الثاني - 3" {
		t.Errorf("class = %q", got)
	}
}

func TestStageCSV_noHeaderFallsBackToFixedOrder(t *testing.T) {
	// no recognizable header: name, phone, grade, class
	csv := "خالد يوسف,0509999999,الصف الثالث,2\n"

	staged := stage(t, csv, nil, nil)

	if len(staged.Students) != 1 {
		t.Fatalf("students staged = %d; want 1", len(staged.Students))
	}
	st := staged.Students[0]
	if st.Name != "خالد يوسف" || st.ParentPhone != "0509999999" {
		t.Errorf("student = %+v", st)
	}
	if staged.Classes[0].Name != "الصف الثالث - 2" {
		t.Errorf("class = %q", staged.Classes[0].Name)
	}
}

func TestStageCSV_mixedDelimitersPerLine(t *testing.T) {
	csv := "اسم الطالب;جوال ولي الأمر;الصف;الفصل\n" +
		"أحمد محمد;0501111111;الصف الأول;1\n" +
		"سالم خالد,0502222222,الصف الأول,1\n"

	staged := stage(t, csv, nil, nil)

	if len(staged.Students) != 2 {
		t.Fatalf("students staged = %d; want 2 (both delimiter styles accepted)", len(staged.Students))
	}
	if len(staged.Classes) != 1 {
		t.Errorf("classes staged = %d; want 1", len(staged.Classes))
	}
}

func TestStageCSV_classSynthesizedOnce(t *testing.T) {
	var b strings.Builder
	b.WriteString("اسم الطالب,جوال ولي الأمر,الصف,الفصل\n")
	for i := 0; i < 50; i++ {
		b.WriteString("طالب رقم " + strings.Repeat("أ", i+1) + ",050,الصف الأول,1\n")
	}

	staged := stage(t, b.String(), nil, nil)

	if len(staged.Classes) != 1 {
		t.Errorf("classes staged = %d; want 1 across 50 rows", len(staged.Classes))
	}
	if staged.Classes[0].Name != "الصف الأول - 1" {
		t.Errorf("class = %q", staged.Classes[0].Name)
	}
	if len(staged.Students) != 50 {
		t.Errorf("students staged = %d; want 50", len(staged.Students))
	}
}

func TestStageCSV_rowRejection(t *testing.T) {
	tests := []struct {
		name string
		row  string
	}{
		{"single character name", "م,050,الصف الأول,1"},
		{"purely numeric name", "12345,050,الصف الأول,1"},
		{"empty name", ",050,الصف الأول,1"},
		{"repeated header text", "اسم الطالب,جوال ولي الأمر,الصف,الفصل"},
		{"row shorter than name column", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			csv := "الصف,الفصل,اسم الطالب,جوال\n" + padRow(tt.row) + "\n"
			staged := stage(t, csv, nil, nil)
			if len(staged.Students) != 0 {
				t.Errorf("students staged = %d; want 0", len(staged.Students))
			}
			if staged.Skipped != 1 {
				t.Errorf("skipped = %d; want 1", staged.Skipped)
			}
		})
	}
}

// padRow shifts fixture rows written in default order into the
// grade,class,name,phone layout of the rejection-test header.
func padRow(row string) string {
	cells := strings.Split(row, ",")
	for len(cells) < 4 {
		cells = append(cells, "")
	}
	// name was first, move it to index 2
	return cells[2] + "," + cells[3] + "," + cells[0] + "," + cells[1]
}

func TestStageCSV_duplicatesSkipped(t *testing.T) {
	existingClasses := []ClassGroup{{ID: "c1", SchoolID: "school1", Name: "الصف الأول - 1", Grade: "الصف الأول"}}
	existingStudents := []Student{{ID: "s1", SchoolID: "school1", Name: "أحمد محمد", ClassID: "c1"}}

	csv := "اسم الطالب,جوال ولي الأمر,الصف,الفصل\n" +
		"أحمد محمد,0501111111,الصف الأول,1\n" + // existing
		"سالم خالد,0502222222,الصف الأول,1\n" + // new
		"سالم خالد,0502222222,الصف الأول,1\n" // staged duplicate

	staged := stage(t, csv, existingClasses, existingStudents)

	if len(staged.Classes) != 0 {
		t.Errorf("classes staged = %d; want 0 (label already exists)", len(staged.Classes))
	}
	if len(staged.Students) != 1 {
		t.Fatalf("students staged = %d; want 1", len(staged.Students))
	}
	if staged.Students[0].Name != "سالم خالد" {
		t.Errorf("student = %q", staged.Students[0].Name)
	}
	if staged.Students[0].ClassID != "c1" {
		t.Errorf("classID = %q; want existing class reused", staged.Students[0].ClassID)
	}
	if staged.Skipped != 2 {
		t.Errorf("skipped = %d; want 2", staged.Skipped)
	}
}

func TestStageCSV_quotedCellsAndCR(t *testing.T) {
	csv := "اسم الطالب,جوال ولي الأمر,الصف,الفصل\r\n" +
		"\"نورة سعد\",\"0504444444\",\"الصف الأول\",\"1\"\r\n"

	staged := stage(t, csv, nil, nil)

	if len(staged.Students) != 1 {
		t.Fatalf("students staged = %d; want 1", len(staged.Students))
	}
	if got := staged.Students[0].Name; got != "نورة سعد" {
		t.Errorf("name = %q; want quotes stripped", got)
	}
}

func TestClassLabel(t *testing.T) {
	tests := []struct {
		name           string
		grade, section string
		want           string
	}{
		{"grade and section", "الصف الأول", "1", "الصف الأول - 1"},
		{"long grade shortened to two words", "الصف الأول الابتدائي بنين", "2", "الصف الأول - 2"},
		{"section only", "", "3", "3"},
		{"grade only", "الصف الثاني", "", "الصف الثاني"},
		{"neither", "", "", DefaultClassLabel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classLabel(tt.grade, tt.section); got != tt.want {
				t.Errorf("classLabel(%q, %q) = %q; want %q", tt.grade, tt.section, got, tt.want)
			}
		})
	}
}
