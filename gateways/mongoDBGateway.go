package gateways

import (
	"context"
	"time"

	"aptosyield/custody/common"
	"aptosyield/custody/errors"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrTxNotFound = errors.New("transaction not found in journal")

// TxRecord is the audit entry of one submitted transaction.
type TxRecord struct {
	TxHash     string    `json:"txHash" bson:"txHash"`
	Sender     string    `json:"sender" bson:"sender"`
	FunctionID string    `json:"functionId" bson:"functionId"`
	FeePayer   string    `json:"feePayer,omitempty" bson:"feePayer,omitempty"`
	Status     string    `json:"status" bson:"status"`
	VMStatus   string    `json:"vmStatus,omitempty" bson:"vmStatus,omitempty"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}

// TxJournal records submissions. Nothing is ever read back to drive a transaction.
type TxJournal interface {
	WriteTx(ctx context.Context, tx TxRecord) error
	UpdateTxStatus(ctx context.Context, txHash, status, vmStatus string) error
	ReadTx(ctx context.Context, txHash string) (TxRecord, error)
}

type MongoJournal struct {
	client       *mongo.Client
	transactions *mongo.Collection
}

// ConnectDB creates a MongoDB client and makes sure txHash is unique in the journal.
func ConnectDB(ctx context.Context, env *common.ENVConfigs) (*MongoJournal, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	c, err := mongo.Connect(ctx, options.Client().ApplyURI(env.MongoDbConnectionString))
	if err != nil {
		return nil, errors.BuildErrMsg(errors.DBInitializationError, err)
	}
	if err = c.Ping(ctx, nil); err != nil {
		c.Disconnect(context.Background())
		return nil, errors.BuildErrMsg(errors.DBConnectionError, err)
	}

	journal := NewMongoJournal(c.Database(env.MongoDatabase).Collection(env.MongoTxCollection))
	journal.client = c

	mod := mongo.IndexModel{
		Keys:    bson.M{"txHash": 1}, // index in ascending order or -1 for descending order
		Options: options.Index().SetUnique(true),
	}
	if _, err = journal.transactions.Indexes().CreateOne(ctx, mod); err != nil {
		c.Disconnect(context.Background())
		return nil, errors.BuildErrMsg(errors.DBConfigurationError, err)
	}
	return journal, nil
}

func NewMongoJournal(collection *mongo.Collection) *MongoJournal {
	return &MongoJournal{transactions: collection}
}

func (m *MongoJournal) Close(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

func (m *MongoJournal) WriteTx(ctx context.Context, tx TxRecord) error {
	now := time.Now().UTC()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = now
	}
	tx.UpdatedAt = now
	if _, err := m.transactions.InsertOne(ctx, tx); err != nil {
		return errors.BuildAndLogErrorMsg(errors.WriteTxError, err)
	}
	return nil
}

func (m *MongoJournal) UpdateTxStatus(ctx context.Context, txHash, status, vmStatus string) error {
	filter := bson.D{{Key: "txHash", Value: txHash}}
	update := bson.M{"$set": bson.M{"status": status, "vmStatus": vmStatus, "updatedAt": time.Now().UTC()}}
	if _, err := m.transactions.UpdateOne(ctx, filter, update); err != nil {
		return errors.BuildAndLogErrorMsg(errors.UpdateTxError, err)
	}
	log.Info("updated DB for: ", txHash)
	return nil
}

func (m *MongoJournal) ReadTx(ctx context.Context, txHash string) (TxRecord, error) {
	var res TxRecord
	err := m.transactions.FindOne(ctx, bson.D{{Key: "txHash", Value: txHash}}).Decode(&res)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return res, ErrTxNotFound
	}
	if err != nil {
		return res, errors.BuildErrMsg(errors.ReadTxError, err)
	}
	return res, nil
}

// NoopJournal is used when MongoDbConnectionString is unset.
type NoopJournal struct{}

func (NoopJournal) WriteTx(context.Context, TxRecord) error { return nil }

func (NoopJournal) UpdateTxStatus(context.Context, string, string, string) error { return nil }

func (NoopJournal) ReadTx(context.Context, string) (TxRecord, error) {
	return TxRecord{}, ErrTxNotFound
}
