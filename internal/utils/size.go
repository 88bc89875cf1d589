package utils

import (
	"math"
	"strconv"
)

var fileSizeUnits = []string{"Bytes", "KB", "MB", "GB", "TB"}

// FormatFileSize converts a byte length into a base-1024 string with at most two decimals,
// such as "0 Bytes", "1 KB" or "1.5 MB". Sizes beyond the largest unit stay in TB.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 " + fileSizeUnits[0]
	}
	unitIndex := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if unitIndex >= len(fileSizeUnits) {
		unitIndex = len(fileSizeUnits) - 1
	}
	value := float64(bytes) / math.Pow(1024, float64(unitIndex))
	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + fileSizeUnits[unitIndex]
}
