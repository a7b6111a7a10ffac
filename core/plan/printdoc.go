package plan

import (
	"embed"
	htmltmpl "html/template"
	"io"
	"sync"

	"github.com/pkg/errors"
)

//go:embed assets/templates/print
var printTemplatesFS embed.FS

var (
	printTmpl     *htmltmpl.Template
	printTmplInit sync.Once
)

// PrintDay is one weekday column of the printable document.
type PrintDay struct {
	Name    string
	Periods []PlanEntry // indexed by period, zero-valued where empty
}

// PrintDoc carries everything the weekly plan template needs.
type PrintDoc struct {
	SchoolName string
	ClassName  string
	WeekLabel  string
	StartDate  string
	Days       []PrintDay
	MaxPeriod  int
}

// dayNames covers the school week, Sunday through Thursday.
var dayNames = []string{"الأحد", "الاثنين", "الثلاثاء", "الأربعاء", "الخميس"}

// BuildPrintDoc lays out one class's plan entries into a day-by-period grid.
func BuildPrintDoc(schoolName, className string, week WeekInfo, entries []PlanEntry, classID string) PrintDoc {
	maxPeriod := 0
	for _, e := range entries {
		if e.ClassID == classID && e.Period > maxPeriod {
			maxPeriod = e.Period
		}
	}
	if maxPeriod < 7 {
		maxPeriod = 7
	}

	days := make([]PrintDay, len(dayNames))
	for i := range days {
		days[i] = PrintDay{Name: dayNames[i], Periods: make([]PlanEntry, maxPeriod)}
	}
	for _, e := range entries {
		if e.ClassID != classID || e.DayIndex < 0 || e.DayIndex >= len(days) || e.Period < 1 || e.Period > maxPeriod {
			continue
		}
		days[e.DayIndex].Periods[e.Period-1] = e
	}
	return PrintDoc{
		SchoolName: schoolName,
		ClassName:  className,
		WeekLabel:  week.Label,
		StartDate:  week.StartDate,
		Days:       days,
		MaxPeriod:  maxPeriod,
	}
}

// RenderPrintDoc writes the document as a standalone printable HTML page.
func RenderPrintDoc(w io.Writer, doc PrintDoc) error {
	printTmplInit.Do(func() {
		printTmpl = htmltmpl.Must(htmltmpl.New("weekly_plan.gohtml").Funcs(htmltmpl.FuncMap{
			"seq": func(n int) []int {
				out := make([]int, n)
				for i := range out {
					out[i] = i + 1
				}
				return out
			},
			"subtract": func(a, b int) int { return a - b },
		}).ParseFS(printTemplatesFS, "assets/templates/print/weekly_plan.gohtml"))
	})
	return errors.Wrap(printTmpl.Execute(w, doc), "rendering weekly plan")
}
