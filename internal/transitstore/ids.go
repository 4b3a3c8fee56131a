package transitstore

import "strconv"

func stopDBIDToStringID(dbID int) string {
	return "stop:" + strconv.Itoa(dbID)
}

func lineDBIDToStringID(lineID, direction int) string {
	return "line:" + strconv.Itoa(lineID) + ":" + strconv.Itoa(direction)
}

func tripID(lineID, direction int, dayType string, ordinal int) string {
	return "trip:" + strconv.Itoa(lineID) + ":" + strconv.Itoa(direction) + ":" + dayType + ":" + strconv.Itoa(ordinal)
}
