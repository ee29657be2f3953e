package source

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/heatposter/pkg/errors"
	"github.com/matzehuels/heatposter/pkg/series"
)

// Default document fields read by [Mongo].
const (
	DefaultMongoDateField  = "date"
	DefaultMongoValueField = "value"
)

// Mongo reads documents {date, value} from a MongoDB collection. The date
// field may be an ISO string or a BSON date; documents on the same day add
// up. Documents without a numeric value count as 1.
type Mongo struct {
	coll       *mongo.Collection
	name       string
	dateField  string
	valueField string
}

// MongoOption configures a Mongo source.
type MongoOption func(*Mongo)

// WithMongoFields overrides the date and value field names.
func WithMongoFields(date, value string) MongoOption {
	return func(m *Mongo) {
		if date != "" {
			m.dateField = date
		}
		if value != "" {
			m.valueField = value
		}
	}
}

// NewMongo returns a source over coll labelled name (default: the
// collection name).
func NewMongo(coll *mongo.Collection, name string, opts ...MongoOption) *Mongo {
	if name == "" {
		name = coll.Name()
	}
	m := &Mongo{coll: coll, name: name, dateField: DefaultMongoDateField, valueField: DefaultMongoValueField}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ConnectMongo connects to uri and returns the named collection along with
// the client, which the caller must disconnect.
func ConnectMongo(ctx context.Context, uri, database, collection string) (*mongo.Client, *mongo.Collection, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10*time.Second).
		SetServerSelectionTimeout(10*time.Second))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongo")
	}
	return client, client.Database(database).Collection(collection), nil
}

// Name returns the type label.
func (m *Mongo) Name() string { return m.name }

// Load reads the documents of years.
func (m *Mongo) Load(ctx context.Context, years series.YearSet) (*series.DaySeries, error) {
	if err := years.Validate(); err != nil {
		return nil, err
	}
	first, last := years[0], years[len(years)-1]
	from := time.Date(first, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(last+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	filter := bson.M{"$or": bson.A{
		bson.M{m.dateField: bson.M{"$gte": from, "$lt": to}},
		bson.M{m.dateField: bson.M{"$gte": series.FirstDay(first).String(), "$lt": fmt.Sprintf("%04d", last+1)}},
	}}

	cur, err := m.coll.Find(ctx, filter, options.Find().
		SetProjection(bson.M{m.dateField: 1, m.valueField: 1}))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "query %s", m.coll.Name())
	}
	defer cur.Close(ctx)

	days := make(map[string]float64)
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode document")
		}
		date, ok := documentDate(doc[m.dateField])
		if !ok {
			continue
		}
		days[date] += documentValue(doc, m.valueField)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "iterate %s", m.coll.Name())
	}
	return FromDays(days, years)
}

// documentDate extracts YYYY-MM-DD from a string or BSON date field.
func documentDate(v any) (string, bool) {
	switch d := v.(type) {
	case string:
		if len(d) < 10 {
			return "", false
		}
		return d[:10], true
	case time.Time:
		return d.UTC().Format(time.DateOnly), true
	case interface{ Time() time.Time }:
		return d.Time().UTC().Format(time.DateOnly), true
	}
	return "", false
}

// documentValue reads a numeric field; missing or non-numeric fields count as 1.
func documentValue(doc bson.M, field string) float64 {
	switch v := doc[field].(type) {
	case float64:
		return v
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	}
	return 1
}
