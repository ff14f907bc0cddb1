package market

import (
	"context"
	"log"

	domain "github.com/example/farm-market/domain/market"
	"github.com/example/farm-market/events"
	"github.com/example/farm-market/modules/catalog"
	"github.com/example/farm-market/modules/messaging"
	"github.com/example/farm-market/modules/navigation"
	"github.com/go-monolith/mono"
)

func (m *MarketModule) createSession(_ context.Context, _ CreateSessionRequest, _ *mono.Msg) (CreateSessionResponse, error) {
	snap := m.manager.Create()
	token, err := m.tokens.Issue(snap.SessionID)
	if err != nil {
		return CreateSessionResponse{}, err
	}

	log.Printf("[market] Session created: %s", snap.SessionID)
	return CreateSessionResponse{
		Token:     token,
		ExpiresIn: m.tokens.ExpiresIn(),
		Session:   snap,
	}, nil
}

func (m *MarketModule) validateToken(_ context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.tokens.Validate(req.Token)
	if err != nil {
		rejection, err := reject(err)
		return ValidateTokenResponse{Rejection: rejection}, err
	}
	if _, err := m.manager.Get(claims.SessionID); err != nil {
		rejection, err := reject(err)
		return ValidateTokenResponse{Rejection: rejection}, err
	}
	return ValidateTokenResponse{SessionID: claims.SessionID}, nil
}

func (m *MarketModule) getSession(_ context.Context, req GetSessionRequest, _ *mono.Msg) (SessionResponse, error) {
	snap, err := m.manager.Get(req.SessionID)
	if err != nil {
		rejection, err := reject(err)
		return SessionResponse{Rejection: rejection}, err
	}
	return SessionResponse{Session: &snap}, nil
}

func (m *MarketModule) applyIntent(_ context.Context, req ApplyIntentRequest, _ *mono.Msg) (SessionResponse, error) {
	snap, eff, err := m.manager.Apply(req.SessionID, req.Intent)
	if err != nil {
		log.Printf("[market] Intent %s rejected for session %s: %v", req.Intent.Type, req.SessionID, err)
		rejection, err := reject(err)
		return SessionResponse{Rejection: rejection}, err
	}

	m.publish(eff)
	return SessionResponse{Session: &snap}, nil
}

func (m *MarketModule) listProducts(_ context.Context, req ListProductsRequest, _ *mono.Msg) (ListProductsResponse, error) {
	var products []catalog.ProductView
	if req.FarmerID != "" {
		products = m.catalog.FarmerProducts(m.catalog.FindFarmerByID(req.FarmerID))
	} else {
		products = m.catalog.Products()
	}
	return ListProductsResponse{Products: products, Total: len(products)}, nil
}

// publish emits the events for eff. Publishing is best-effort.
func (m *MarketModule) publish(eff navigation.Effects) {
	if m.eventBus == nil {
		return
	}

	if eff.ProductAdded != nil {
		farmName := m.catalog.FarmName(eff.ProductAdded.FarmerID)
		if err := events.ProductAddedV1.Publish(m.eventBus, productAddedEvent(eff.ProductAdded, farmName), nil); err != nil {
			log.Printf("[market] Warning: failed to publish ProductAdded event for product %s: %v", eff.ProductAdded.ID, err)
		}
	}
	if eff.OrderPlaced != nil {
		if err := events.OrderPlacedV1.Publish(m.eventBus, eff.OrderPlaced.Event(), nil); err != nil {
			log.Printf("[market] Warning: failed to publish OrderPlaced event for order %s: %v", eff.OrderPlaced.Number, err)
		}
	}
	if eff.MessageSent != nil {
		if err := events.MessageSentV1.Publish(m.eventBus, messageSentEvent(*eff.MessageSent, eff.Reply), nil); err != nil {
			log.Printf("[market] Warning: failed to publish MessageSent event for message %s: %v", eff.MessageSent.ID, err)
		}
	}
}

func productAddedEvent(p *domain.Product, farmName string) events.ProductAddedEvent {
	return events.ProductAddedEvent{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Unit:      p.Unit,
		Quantity:  p.Quantity,
		FarmerID:  p.FarmerID,
		FarmName:  farmName,
		CreatedAt: p.CreatedAt,
	}
}

// messageSentEvent describes msg. For a reply, Body is the latest reply and
// SentAt its time.
func messageSentEvent(msg messaging.Message, reply bool) events.MessageSentEvent {
	event := events.MessageSentEvent{
		MessageID: msg.ID,
		From:      msg.From,
		To:        msg.To,
		Body:      msg.Body,
		Reply:     reply,
		SentAt:    msg.SentAt,
	}
	if reply && len(msg.Replies) > 0 {
		last := msg.Replies[len(msg.Replies)-1]
		event.Body = last.Body
		event.SentAt = last.SentAt
	}
	return event
}
