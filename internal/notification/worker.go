package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"deskmate-backend/internal/booking"
	"deskmate-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans reservation events out to the push subscriptions
// watching the affected resource. Dispatch is fire-and-forget: a full
// queue or a failed send never reaches the booking result.
type WorkerPool struct {
	size    int
	jobs    chan booking.Event
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan booking.Event, size*4),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case ev := <-wp.jobs:
			wp.notifyWatchers(ctx, ev)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues a reservation event. Implements booking.Notifier.
func (wp *WorkerPool) Dispatch(ev booking.Event) {
	select {
	case wp.jobs <- ev:
	default:
		log.Printf("notification queue full, dropping %s event for reservation %d", ev.Type, ev.ReservationID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan booking.Event {
	return wp.jobs
}

// notifyWatchers fetches the subscriptions watching the resource and
// pushes a message describing the event.
func (wp *WorkerPool) notifyWatchers(ctx context.Context, ev booking.Event) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Joins("JOIN subscription_resource_mapping srm ON srm.push_subscription_endpoint = push_subscriptions.endpoint").
		Where("srm.resource_id = ?", ev.ResourceID).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for resource %d: %v", ev.ResourceID, err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	var resource model.Resource
	label := fmt.Sprintf("resource %d", ev.ResourceID)
	if err := wp.db.WithContext(ctx).
		Select("name", "number").
		First(&resource, ev.ResourceID).Error; err != nil {
		log.Printf("Error fetching resource %d: %v", ev.ResourceID, err)
	} else if resource.Name != "" {
		label = fmt.Sprintf("%s (%s)", resource.Name, resource.Number)
	}

	var message string
	switch ev.Type {
	case booking.EventCancelled:
		message = fmt.Sprintf("%s is available again", label)
	default:
		message = fmt.Sprintf("%s was just booked", label)
	}

	log.Printf("Sending %d notifications for resource %d", len(subscriptions), ev.ResourceID)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
