package converter

import (
	"booking-service/src/internal/entity"
	"booking-service/src/internal/model"
)

func BookingToResponse(b *entity.Booking) *model.BookingResponse {
	if b == nil {
		return nil
	}
	resp := &model.BookingResponse{
		ID:                 b.ID,
		BulkGroupID:        b.BulkGroupID,
		CustomerID:         b.CustomerID,
		ServiceID:          b.ServiceID,
		ServiceName:        b.ServiceName,
		ScheduledDate:      b.ScheduledDate.Format("2006-01-02"),
		ScheduledTime:      b.ScheduledTime,
		Address:            b.Address,
		Notes:              b.Notes,
		Price:              b.Price,
		PaymentStatus:      b.PaymentStatus,
		PaymentMethod:      b.PaymentMethod,
		PaymentID:          b.PaymentID,
		Status:             b.Status,
		WorkProofPhotos:    b.WorkProofPhotos,
		CancellationReason: b.CancellationReason,
		RejectionReason:    b.RejectionReason,
		RescheduleRequest:  b.RescheduleRequest,
		StartedAt:          b.StartedAt,
		CompletedAt:        b.CompletedAt,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}
	if b.WorkerID != nil {
		resp.WorkerID = *b.WorkerID
	}
	return resp
}

func BookingsToResponse(bookings []entity.Booking) []*model.BookingResponse {
	out := make([]*model.BookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, BookingToResponse(&bookings[i]))
	}
	return out
}

func AddressFromRequest(a model.AddressRequest) entity.Address {
	return entity.Address{
		Line:      a.Line,
		City:      a.City,
		Pincode:   a.Pincode,
		Latitude:  a.Latitude,
		Longitude: a.Longitude,
	}
}
