package convert

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tallyfy/migrator/pkg/model"
)

// durationPattern covers the ISO 8601 subset seen in real diagrams: weeks,
// days and a time part. Calendar years and months are ambiguous as relative
// deadlines and are deliberately not matched.
var durationPattern = regexp.MustCompile(`^P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseISODuration converts a BPMN timer duration into a relative deadline
// anchored on the previous step. It picks the coarsest unit that loses
// nothing: PT48H stays 48 hours, P2D becomes 2 days, P1DT12H becomes 36
// hours.
func parseISODuration(expr string) (*model.Deadline, bool) {
	expr = strings.TrimSpace(expr)
	if expr == "" || expr == "P" || strings.HasSuffix(expr, "T") {
		return nil, false
	}

	m := durationPattern.FindStringSubmatch(expr)
	if m == nil {
		return nil, false
	}

	weeks := atoi(m[1])
	days := atoi(m[2])
	hours := atoi(m[3])
	minutes := atoi(m[4])
	seconds := atoi(m[5])

	if weeks+days+hours+minutes+seconds == 0 {
		return nil, false
	}

	deadline := &model.Deadline{Anchor: model.DeadlineFromPreviousStep}

	switch {
	case days+hours+minutes+seconds == 0:
		deadline.Value = weeks
		deadline.Unit = "weeks"
	case hours+minutes+seconds == 0:
		deadline.Value = weeks*7 + days
		deadline.Unit = "days"
	case minutes+seconds == 0:
		deadline.Value = (weeks*7+days)*24 + hours
		deadline.Unit = "hours"
	default:
		total := ((weeks*7+days)*24+hours)*60 + minutes
		total += (seconds + 59) / 60 // partial minutes round up

		deadline.Value = total
		deadline.Unit = "minutes"
	}

	return deadline, true
}

func atoi(s string) int {
	if s == "" {
		return 0
	}

	n, _ := strconv.Atoi(s)

	return n
}
