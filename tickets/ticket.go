package tickets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"sofa/db"
	"sofa/mq"
	"sofa/structs"
	"sofa/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type ticketPayload struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Price    float64  `json:"price"`
	Total    int      `json:"total"`
	Benefits []string `json:"benefits"`
}

func CreateTicket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")

	var payload ticketPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid input data", http.StatusBadRequest)
		return
	}

	if payload.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}
	if payload.Type != structs.TicketFree && payload.Type != structs.TicketPaid {
		http.Error(w, "Type must be free or paid", http.StatusBadRequest)
		return
	}
	if payload.Total < 1 {
		http.Error(w, "Total must be at least 1", http.StatusBadRequest)
		return
	}
	if payload.Type == structs.TicketPaid && payload.Price <= 0 {
		http.Error(w, "Invalid price value", http.StatusBadRequest)
		return
	}
	// Free tickets always cost nothing
	if payload.Type == structs.TicketFree {
		payload.Price = 0
	}

	var event structs.Event
	err := db.EventsCollection.FindOne(r.Context(), bson.M{"eventid": eventID}).Decode(&event)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return
		}
		logrus.Errorf("error fetching event %s: %v", eventID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	// The combined ticket pool must fit the event capacity
	offered, err := totalOffered(r.Context(), eventID)
	if err != nil {
		logrus.Errorf("error summing tickets for event %s: %v", eventID, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !withinCapacity(offered, 0, payload.Total, event.Capacity) {
		http.Error(w, fmt.Sprintf("Ticket total exceeds event capacity (%d of %d already offered)", offered, event.Capacity), http.StatusBadRequest)
		return
	}

	tick := structs.Ticket{
		TicketID:  utils.GenerateID(12),
		EventID:   eventID,
		Name:      payload.Name,
		Type:      payload.Type,
		Price:     payload.Price,
		Total:     payload.Total,
		Sold:      0,
		Benefits:  payload.Benefits,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if _, err := db.TicketsCollection.InsertOne(r.Context(), tick); err != nil {
		http.Error(w, "Failed to create ticket: "+err.Error(), http.StatusInternalServerError)
		return
	}

	m := mq.Index{EntityType: "ticket", EntityId: tick.TicketID, Action: "POST", ItemType: "event", ItemId: eventID}
	go mq.Emit("ticket-created", m)

	utils.SendJSONResponse(w, http.StatusCreated, tick)
}

// withinCapacity reports whether swapping a ticket's total from
// oldTotal to newTotal keeps the event's combined pool at or under
// capacity. A new ticket passes 0 for oldTotal.
func withinCapacity(offered, oldTotal, newTotal, capacity int) bool {
	return offered-oldTotal+newTotal <= capacity
}

// editFilter pins the ticket for an update. When total is being
// changed it only matches while sold still fits under the new total,
// so a registration racing the edit cannot leave sold above total.
func editFilter(eventID, ticketID string, newTotal int, totalChanged bool) bson.M {
	filter := bson.M{"eventid": eventID, "ticketid": ticketID}
	if totalChanged {
		filter["sold"] = bson.M{"$lte": newTotal}
	}
	return filter
}

func totalOffered(ctx context.Context, eventID string) (int, error) {
	cursor, err := db.TicketsCollection.Find(ctx, bson.M{"eventid": eventID})
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var ticks []structs.Ticket
	if err := cursor.All(ctx, &ticks); err != nil {
		return 0, err
	}

	sum := 0
	for _, t := range ticks {
		sum += t.Total
	}
	return sum, nil
}

func GetTickets(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")

	cursor, err := db.TicketsCollection.Find(r.Context(), bson.M{"eventid": eventID})
	if err != nil {
		http.Error(w, "Failed to fetch tickets", http.StatusInternalServerError)
		return
	}
	defer cursor.Close(context.TODO())

	var tickList []structs.Ticket
	if err := cursor.All(r.Context(), &tickList); err != nil {
		http.Error(w, "Failed to decode tickets", http.StatusInternalServerError)
		return
	}
	if tickList == nil {
		tickList = []structs.Ticket{}
	}

	utils.SendJSONResponse(w, http.StatusOK, tickList)
}

func GetTicket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	ticketID := ps.ByName("ticketid")

	var ticket structs.Ticket
	err := db.TicketsCollection.FindOne(r.Context(), bson.M{"eventid": eventID, "ticketid": ticketID}).Decode(&ticket)
	if err != nil {
		http.Error(w, "Ticket not found", http.StatusNotFound)
		return
	}

	utils.SendJSONResponse(w, http.StatusOK, ticket)
}

func EditTicket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	ticketID := ps.ByName("ticketid")

	var payload ticketPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid input data", http.StatusBadRequest)
		return
	}

	var existing structs.Ticket
	err := db.TicketsCollection.FindOne(r.Context(), bson.M{"eventid": eventID, "ticketid": ticketID}).Decode(&existing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			http.Error(w, "Ticket not found", http.StatusNotFound)
		} else {
			http.Error(w, "Database error", http.StatusInternalServerError)
		}
		return
	}

	updateFields := bson.M{}
	totalChanged := false
	if payload.Name != "" && payload.Name != existing.Name {
		updateFields["name"] = payload.Name
	}
	if payload.Price > 0 && payload.Price != existing.Price && existing.Type == structs.TicketPaid {
		updateFields["price"] = payload.Price
	}
	if payload.Total >= 1 && payload.Total != existing.Total {
		// Shrinking below what is already sold would break the ledger
		if payload.Total < existing.Sold {
			http.Error(w, "Total cannot be less than tickets already sold", http.StatusBadRequest)
			return
		}
		// Raising the pool must still fit the event capacity
		if payload.Total > existing.Total {
			var event structs.Event
			if err := db.EventsCollection.FindOne(r.Context(), bson.M{"eventid": eventID}).Decode(&event); err != nil {
				logrus.Errorf("error fetching event %s: %v", eventID, err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			offered, err := totalOffered(r.Context(), eventID)
			if err != nil {
				logrus.Errorf("error summing tickets for event %s: %v", eventID, err)
				http.Error(w, "Internal server error", http.StatusInternalServerError)
				return
			}
			if !withinCapacity(offered, existing.Total, payload.Total, event.Capacity) {
				http.Error(w, fmt.Sprintf("Ticket total exceeds event capacity (%d of %d already offered)", offered, event.Capacity), http.StatusBadRequest)
				return
			}
		}
		updateFields["total"] = payload.Total
		totalChanged = true
	}
	if len(payload.Benefits) > 0 {
		updateFields["benefits"] = payload.Benefits
	}

	if len(updateFields) == 0 {
		utils.SendJSONResponse(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "No changes detected for ticket",
		})
		return
	}
	updateFields["updated_at"] = time.Now()

	res, err := db.TicketsCollection.UpdateOne(r.Context(), editFilter(eventID, ticketID, payload.Total, totalChanged), bson.M{"$set": updateFields})
	if err != nil {
		http.Error(w, "Failed to update ticket: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if res.MatchedCount == 0 {
		http.Error(w, "Ticket changed concurrently", http.StatusConflict)
		return
	}

	m := mq.Index{EntityType: "ticket", EntityId: ticketID, Action: "PUT", ItemType: "event", ItemId: eventID}
	go mq.Emit("ticket-edited", m)

	utils.SendJSONResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Ticket updated successfully",
		"data":    updateFields,
	})
}

func DeleteTicket(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	ticketID := ps.ByName("ticketid")

	_, err := db.TicketsCollection.DeleteOne(r.Context(), bson.M{"eventid": eventID, "ticketid": ticketID})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	m := mq.Index{EntityType: "ticket", EntityId: ticketID, Action: "DELETE", ItemType: "event", ItemId: eventID}
	go mq.Emit("ticket-deleted", m)

	utils.SendJSONResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Ticket deleted successfully",
	})
}
