package storage

import (
	"time"

	"github.com/julianstephens/habitick/internal/models"
	"github.com/julianstephens/habitick/internal/watch"
)

// Observed forwards to a Provider and publishes a watch.Event after each
// successful mutation. Reads pass straight through.
type Observed struct {
	Provider
	hub *watch.Hub
}

func NewObserved(p Provider, hub *watch.Hub) *Observed {
	return &Observed{Provider: p, hub: hub}
}

func (o *Observed) Hub() *watch.Hub {
	return o.hub
}

func (o *Observed) publish(err error, topic watch.Topic, habitID string) error {
	if err == nil {
		o.hub.Publish(watch.Event{Topic: topic, HabitID: habitID})
	}
	return err
}

func (o *Observed) SaveSettings(s models.Settings) error {
	return o.publish(o.Provider.SaveSettings(s), watch.TopicSettings, "")
}

func (o *Observed) AddHabit(h models.Habit) error {
	return o.publish(o.Provider.AddHabit(h), watch.TopicHabits, h.ID)
}

func (o *Observed) UpdateHabit(h models.Habit) error {
	return o.publish(o.Provider.UpdateHabit(h), watch.TopicHabits, h.ID)
}

func (o *Observed) UpdateHabits(hs []models.Habit) error {
	return o.publish(o.Provider.UpdateHabits(hs), watch.TopicHabits, "")
}

func (o *Observed) UpdateSortIndexes(ids []string) error {
	return o.publish(o.Provider.UpdateSortIndexes(ids), watch.TopicHabits, "")
}

func (o *Observed) DeleteHabit(id string) error {
	err := o.Provider.DeleteHabit(id)
	if err != nil {
		return err
	}
	for _, topic := range []watch.Topic{watch.TopicRecords, watch.TopicTags, watch.TopicHabits} {
		o.hub.Publish(watch.Event{Topic: topic, HabitID: id})
	}
	return nil
}

func (o *Observed) UpsertRecord(r models.HabitRecord) error {
	return o.publish(o.Provider.UpsertRecord(r), watch.TopicRecords, r.HabitID)
}

func (o *Observed) DeleteRecord(habitID string, day time.Time) error {
	return o.publish(o.Provider.DeleteRecord(habitID, day), watch.TopicRecords, habitID)
}

func (o *Observed) AddTag(t models.Tag) error {
	return o.publish(o.Provider.AddTag(t), watch.TopicTags, t.HabitID)
}

func (o *Observed) TouchTag(habitID, name string, at time.Time) error {
	return o.publish(o.Provider.TouchTag(habitID, name, at), watch.TopicTags, habitID)
}

func (o *Observed) DeleteTag(habitID, name string) error {
	return o.publish(o.Provider.DeleteTag(habitID, name), watch.TopicTags, habitID)
}
