package tickets

import (
	"context"
	"errors"
	"net/http"
	"time"

	"sofa/db"
	"sofa/globals"
	"sofa/mq"
	"sofa/structs"
	"sofa/userdata"
	"sofa/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Registration consumes one ticket unit and joins the event's attendee
// set. Both invariants live on the document that owns them and each is
// enforced by a single conditional update, never read-then-write:
//
//  1. events: add the user to attendees, guarded by "not already an
//     attendee" — the duplicate guard.
//  2. ticks: increment sold, guarded by "sold < total" — the capacity
//     guard. On failure step 1 is compensated with a $pull.
//
// Under concurrent registrations for the last unit, exactly one
// increment can match; sold never exceeds total.

// attendeeFilter matches an event the user has not joined yet.
func attendeeFilter(eventID, userID string) bson.M {
	return bson.M{"eventid": eventID, "attendees": bson.M{"$ne": userID}}
}

func attendeeUpdate(userID string) bson.M {
	return bson.M{"$addToSet": bson.M{"attendees": userID}}
}

// soldFilter matches the ticket only while a unit is still available.
func soldFilter(eventID, ticketID string) bson.M {
	return bson.M{
		"eventid":  eventID,
		"ticketid": ticketID,
		"$expr":    bson.M{"$lt": bson.A{"$sold", "$total"}},
	}
}

func soldUpdate(now time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{"sold": 1},
		"$set": bson.M{"updated_at": now},
	}
}

func RegisterTicket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	ticketID := ps.ByName("ticketid")

	userID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok {
		http.Error(w, "Invalid user", http.StatusUnauthorized)
		return
	}

	ctx := r.Context()

	// Duplicate guard on the event document
	res, err := db.EventsCollection.UpdateOne(ctx, attendeeFilter(eventID, userID), attendeeUpdate(userID))
	if err != nil {
		logrus.Errorf("registration attendee update failed for event %s: %v", eventID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		reportConflict(ctx, w, eventID, ticketID, userID)
		return
	}

	// Capacity guard on the ticket document
	err = db.TicketsCollection.FindOneAndUpdate(ctx, soldFilter(eventID, ticketID), soldUpdate(time.Now())).Err()
	if err != nil {
		// Undo the attendee insert so the failed attempt leaves no trace.
		// If the pull itself fails the user stays in attendees without a
		// ticket and later attempts read as duplicates until the entry is
		// removed by hand, so it gets one retry before logging.
		if _, pullErr := db.EventsCollection.UpdateOne(ctx, bson.M{"eventid": eventID}, bson.M{"$pull": bson.M{"attendees": userID}}); pullErr != nil {
			if _, retryErr := db.EventsCollection.UpdateOne(ctx, bson.M{"eventid": eventID}, bson.M{"$pull": bson.M{"attendees": userID}}); retryErr != nil {
				logrus.Errorf("registration rollback failed for event %s user %s: %v", eventID, userID, retryErr)
			}
		}

		if errors.Is(err, mongo.ErrNoDocuments) {
			reportConflict(ctx, w, eventID, ticketID, userID)
			return
		}
		logrus.Errorf("registration sold update failed for ticket %s: %v", ticketID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	userdata.SetUserData("event-attending", eventID, userID)
	userdata.SetUserData("ticket", ticketID, userID)

	m := mq.Index{EntityType: "ticket", EntityId: ticketID, Action: "POST", ItemType: "event", ItemId: eventID}
	go mq.Emit("ticket-registered", m)

	utils.SendJSONResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Registered successfully",
	})
}

// reportConflict classifies a failed registration for the response
// message only; the guards above are the source of truth.
func reportConflict(ctx context.Context, w http.ResponseWriter, eventID, ticketID, userID string) {
	var event structs.Event
	if err := db.EventsCollection.FindOne(ctx, bson.M{"eventid": eventID}).Decode(&event); err != nil {
		http.Error(w, "Event not found", http.StatusConflict)
		return
	}

	for _, attendee := range event.Attendees {
		if attendee == userID {
			http.Error(w, "Already registered for this event", http.StatusConflict)
			return
		}
	}

	var ticket structs.Ticket
	if err := db.TicketsCollection.FindOne(ctx, bson.M{"eventid": eventID, "ticketid": ticketID}).Decode(&ticket); err != nil {
		http.Error(w, "Ticket not found", http.StatusConflict)
		return
	}
	if ticket.Sold >= ticket.Total {
		http.Error(w, "Tickets sold out", http.StatusConflict)
		return
	}

	http.Error(w, "Registration failed", http.StatusConflict)
}
