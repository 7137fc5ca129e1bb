package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScheduleSource struct {
	schedule  *Schedule
	exception *ScheduleException
	booked    map[string]struct{}
}

func (f *fakeScheduleSource) ScheduleFor(context.Context, uuid.UUID, int) (*Schedule, error) {
	return f.schedule, nil
}

func (f *fakeScheduleSource) ExceptionFor(context.Context, uuid.UUID, time.Time) (*ScheduleException, error) {
	return f.exception, nil
}

func (f *fakeScheduleSource) BookedTimes(context.Context, uuid.UUID, time.Time, time.Time, *time.Location) (map[string]struct{}, error) {
	if f.booked == nil {
		return map[string]struct{}{}, nil
	}
	return f.booked, nil
}

func newCalc(src *fakeScheduleSource, now time.Time) *Availability {
	a := NewAvailability(src)
	a.now = func() time.Time { return now }
	return a
}

var (
	doctorID = uuid.New()
	// A Monday.
	futureDay = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	farBefore = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
)

func workingDay() *Schedule {
	return &Schedule{
		DoctorID:   doctorID,
		DayOfWeek:  1,
		IsActive:   true,
		StartTime:  "09:00",
		EndTime:    "17:00",
		BreakStart: "13:00",
		BreakEnd:   "14:00",
	}
}

func TestSlotsRespectHoursBreakAndGranularity(t *testing.T) {
	calc := newCalc(&fakeScheduleSource{schedule: workingDay()}, farBefore)

	slots, err := calc.Slots(context.Background(), doctorID, futureDay)
	require.NoError(t, err)

	// 09:00-17:00 is 16 half-hour slots, minus two inside the 13:00-14:00 break.
	assert.Len(t, slots, 14)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "16:30", slots[len(slots)-1])
	assert.NotContains(t, slots, "13:00")
	assert.NotContains(t, slots, "13:30")
	assert.Contains(t, slots, "14:00")

	for i := 1; i < len(slots); i++ {
		assert.Less(t, slots[i-1], slots[i], "slots must ascend")
	}
}

func TestSlotsExcludeBookedTimes(t *testing.T) {
	src := &fakeScheduleSource{
		schedule: workingDay(),
		booked:   map[string]struct{}{"10:00": {}, "14:30": {}},
	}
	calc := newCalc(src, farBefore)

	slots, err := calc.Slots(context.Background(), doctorID, futureDay)
	require.NoError(t, err)
	assert.NotContains(t, slots, "10:00")
	assert.NotContains(t, slots, "14:30")
	assert.Contains(t, slots, "10:30")
}

func TestClosedExceptionWinsOverSchedule(t *testing.T) {
	src := &fakeScheduleSource{
		schedule:  workingDay(),
		exception: &ScheduleException{DoctorID: doctorID, IsClosed: true},
	}
	calc := newCalc(src, farBefore)

	slots, err := calc.Slots(context.Background(), doctorID, futureDay)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestCustomHoursExceptionReplacesSchedule(t *testing.T) {
	src := &fakeScheduleSource{
		schedule:  workingDay(),
		exception: &ScheduleException{DoctorID: doctorID, CustomStart: "10:00", CustomEnd: "12:00"},
	}
	calc := newCalc(src, farBefore)

	slots, err := calc.Slots(context.Background(), doctorID, futureDay)
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "10:30", "11:00", "11:30"}, slots)
}

func TestNoScheduleMeansUnbookable(t *testing.T) {
	calc := newCalc(&fakeScheduleSource{}, farBefore)

	slots, err := calc.Slots(context.Background(), doctorID, futureDay)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestInactiveScheduleMeansUnbookable(t *testing.T) {
	sch := workingDay()
	sch.IsActive = false
	calc := newCalc(&fakeScheduleSource{schedule: sch}, farBefore)

	slots, err := calc.Slots(context.Background(), doctorID, futureDay)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestTodayExcludesElapsedSlots(t *testing.T) {
	// 11:10 on the requested day: 09:00-11:00 have started, 11:30 has not.
	now := time.Date(2024, 6, 10, 11, 10, 0, 0, time.UTC)
	calc := newCalc(&fakeScheduleSource{schedule: workingDay()}, now)

	slots, err := calc.Slots(context.Background(), doctorID, futureDay)
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, "11:30", slots[0])
}

func TestLastSlotMustFullyFit(t *testing.T) {
	src := &fakeScheduleSource{schedule: &Schedule{
		DayOfWeek: 1, IsActive: true, StartTime: "09:00", EndTime: "10:15",
	}}
	calc := newCalc(src, farBefore)

	slots, err := calc.Slots(context.Background(), doctorID, futureDay)
	require.NoError(t, err)
	// 09:45-10:15 would fit, but slots are on the half-hour grid from start;
	// 09:30 ends at 10:00 <= 10:15, 10:00 ends at 10:30 > 10:15.
	assert.Equal(t, []string{"09:00", "09:30"}, slots)
}
