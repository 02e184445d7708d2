package nats

import (
	"fmt"
)

func GetTableEventsSubject(table string) string {
	return fmt.Sprintf("skat.%s.events", table)
}

func GetTableSeatsSubject(table string) string {
	return fmt.Sprintf("skat.%s.seats", table)
}
