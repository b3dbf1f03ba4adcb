package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_PublishReachesMatchingSubscribers(t *testing.T) {
	ctx := context.Background()
	bus := NewBus()

	var carList, carOne, userOne int
	bus.Subscribe([]Tag{TypeTag(TypeCar)}, func(context.Context, []Tag) { carList++ })
	bus.Subscribe([]Tag{IDTag(TypeCar, "1")}, func(context.Context, []Tag) { carOne++ })
	bus.Subscribe([]Tag{IDTag(TypeUser, "1")}, func(context.Context, []Tag) { userOne++ })

	bus.Publish(ctx, TypeTag(TypeCar))
	assert.Equal(t, 1, carList)
	assert.Equal(t, 1, carOne)
	assert.Equal(t, 0, userOne)

	bus.Publish(ctx, IDTag(TypeUser, "1"), TypeTag(TypeUser))
	assert.Equal(t, 1, userOne)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus()
	calls := 0
	unsubscribe := bus.Subscribe([]Tag{TypeTag(TypeUser)}, func(context.Context, []Tag) { calls++ })
	assert.Equal(t, 1, bus.Subscribers())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, bus.Subscribers())

	bus.Publish(context.Background(), TypeTag(TypeUser))
	assert.Equal(t, 0, calls)
}

func TestBus_HooksOnlyForLocalEvents(t *testing.T) {
	ctx := context.Background()
	bus := NewBus()

	hooks, subs := 0, 0
	bus.OnPublish(func(context.Context, []Tag) { hooks++ })
	bus.Subscribe([]Tag{TypeTag(TypeCar)}, func(context.Context, []Tag) { subs++ })

	bus.Publish(ctx, TypeTag(TypeCar))
	bus.Deliver(ctx, TypeTag(TypeCar))

	assert.Equal(t, 1, hooks)
	assert.Equal(t, 2, subs)
}
