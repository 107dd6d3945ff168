package repository

import (
	"PayIVR/entity"
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SavePaymentRecord upserts the ledger entry of a call.
func (m *MongoDB) SavePaymentRecord(ctx context.Context, record *entity.PaymentRecord) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(paymentsCollection)

	filter := bson.D{{Key: "call_sid", Value: record.CallSid}}
	update := bson.D{{Key: "$set", Value: record}}
	opts := options.Update().SetUpsert(true)

	_, err = collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("mongodb upsert error: %w", err)
	}

	return nil
}

// GetPaymentRecord returns nil without error when the call has no record.
func (m *MongoDB) GetPaymentRecord(ctx context.Context, callSid string) (*entity.PaymentRecord, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(ctx, connection)

	collection := connection.Database(m.database).Collection(paymentsCollection)

	filter := bson.D{{Key: "call_sid", Value: callSid}}

	var record entity.PaymentRecord
	err = collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		return nil, m.findError(err)
	}

	return &record, nil
}
