package progress

import "strconv"

func formatPercent(p int) string {
	return "Downloading… " + strconv.Itoa(p) + "%"
}
