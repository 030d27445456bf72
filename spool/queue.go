package spool

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// FindOutputQueue returns the first queue whose driver name equals driver
// after NFC normalization. The queue list is read fresh on every call.
func FindOutputQueue(sp Spooler, driver string) (Queue, error) {
	queues, err := sp.Queues()
	if err != nil {
		return Queue{}, newCallError(CallEnumPrinters, err)
	}

	want := norm.NFC.String(driver)
	for _, q := range queues {
		if norm.NFC.String(q.Driver) != want {
			continue
		}
		if !q.AcceptsPageDescription {
			return Queue{}, &DriverIncompatibleError{Queue: q.Name, Driver: q.Driver}
		}
		return q, nil
	}

	return Queue{}, &PrinterNotFoundError{Driver: driver}
}

// Queues lists the available queues with normalized names.
func Queues(sp Spooler) ([]Queue, error) {
	queues, err := sp.Queues()
	if err != nil {
		return nil, newCallError(CallEnumPrinters, err)
	}
	out := make([]Queue, len(queues))
	for i, q := range queues {
		q.Name = norm.NFC.String(q.Name)
		q.Driver = norm.NFC.String(q.Driver)
		out[i] = q
	}
	return out, nil
}

// printerName is the name passed to Open.
func printerName(q Queue) (string, error) {
	if q.Name == "" {
		return "", fmt.Errorf("spool: queue has no name")
	}
	return norm.NFC.String(q.Name), nil
}
