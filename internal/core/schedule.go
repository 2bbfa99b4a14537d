// This file implements the next-run strategies for recurring transactions.
// Each frequency has its own calculator; monthly and yearly clamp to the last
// valid day of the target month.

package core

import (
	"fmt"
	"time"
)

// NextRunCalculator computes the occurrence after prev. anchor is the rule's
// start date; calendar-based frequencies keep its day of month.
type NextRunCalculator interface {
	Next(prev, anchor time.Time) time.Time
}

type DailyCalculator struct{}

func (DailyCalculator) Next(prev, _ time.Time) time.Time {
	return prev.AddDate(0, 0, 1)
}

type WeeklyCalculator struct{}

func (WeeklyCalculator) Next(prev, _ time.Time) time.Time {
	return prev.AddDate(0, 0, 7)
}

// MonthlyCalculator moves to the anchor day of the following month.
// Jan 31 -> Feb 28 -> Mar 31.
type MonthlyCalculator struct{}

func (MonthlyCalculator) Next(prev, anchor time.Time) time.Time {
	y, m, _ := prev.Date()
	return clampedDate(y, m+1, anchor.Day(), prev)
}

// YearlyCalculator moves to the anchor day and month of the following year.
// Feb 29 becomes Feb 28 in common years.
type YearlyCalculator struct{}

func (YearlyCalculator) Next(prev, anchor time.Time) time.Time {
	return clampedDate(prev.Year()+1, anchor.Month(), anchor.Day(), prev)
}

// clampedDate builds y-m-day with the clock of tod, using the month's last day
// when day does not exist.
func clampedDate(y int, m time.Month, day int, tod time.Time) time.Time {
	// normalize month overflow (m may be 13)
	first := time.Date(y, m, 1, 0, 0, 0, 0, tod.Location())
	lastDay := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, tod.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, tod.Hour(), tod.Minute(), tod.Second(), tod.Nanosecond(), tod.Location())
}

var nextRunStrategies = map[Frequency]NextRunCalculator{
	Daily:   DailyCalculator{},
	Weekly:  WeeklyCalculator{},
	Monthly: MonthlyCalculator{},
	Yearly:  YearlyCalculator{},
}

func GetNextRunCalculator(f Frequency) (NextRunCalculator, error) {
	c, ok := nextRunStrategies[f]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", f)
	}
	return c, nil
}

// FollowingRun returns the occurrence after r.NextRun.
func (r RecurringTransaction) FollowingRun() (time.Time, error) {
	c, err := GetNextRunCalculator(r.Frequency)
	if err != nil {
		return time.Time{}, err
	}
	return c.Next(r.NextRun, r.StartDate), nil
}
