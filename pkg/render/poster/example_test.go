package poster_test

import (
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/matzehuels/heatposter/pkg/render/poster"
	"github.com/matzehuels/heatposter/pkg/series"
)

func ExampleCompose() {
	s := series.New()
	for _, day := range []string{"2023-03-01", "2023-03-02"} {
		d, _ := civil.ParseDate(day)
		_ = s.Set(d, series.Scalar(2))
	}

	p, err := poster.Compose(poster.Input{
		Series: s,
		Years:  series.NewYearSet(2023),
		Types:  []string{"commits"},
	}, poster.WithTitle("Commits"))
	if err != nil {
		fmt.Println(err)
		return
	}

	st := p.Stats["commits"][2023]
	fmt.Println("cells:", len(p.Document.Cells()))
	fmt.Println("total:", st.Total, "longest streak:", st.LongestStreak)
	// Output:
	// cells: 365
	// total: 4 longest streak: 2
}
