package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/MuhamadAgungGumelar/rigsite-dashboard-be/internal/modules/dashboard/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LogsCollection is where the chatbot backend appends chat interactions
const LogsCollection = "rigbot_logs"

// LogRepo reads the append-only chat log
type LogRepo interface {
	// Latest returns at most limit entries, newest first
	Latest(ctx context.Context, limit int) ([]models.LogEntry, error)
}

type logRepo struct {
	db *gorm.DB
}

func NewLogRepo(db *gorm.DB) LogRepo {
	return &logRepo{db: db}
}

func (r *logRepo) Latest(ctx context.Context, limit int) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	err := r.db.WithContext(ctx).
		Order("timestamp DESC NULLS LAST").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, wrapStoreErr("query logs", err)
	}
	return entries, nil
}

type mongoLogRepo struct {
	coll *mongo.Collection
}

func NewMongoLogRepo(db *mongo.Database) LogRepo {
	return &mongoLogRepo{coll: db.Collection(LogsCollection)}
}

func (r *mongoLogRepo) Latest(ctx context.Context, limit int) ([]models.LogEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, wrapStoreErr("query logs", err)
	}
	defer cur.Close(ctx)

	var entries []models.LogEntry
	for cur.Next(ctx) {
		entry, err := decodeLogEntry(cur.Current)
		if err != nil {
			return nil, wrapStoreErr("decode log", err)
		}
		entries = append(entries, entry)
	}
	if err := cur.Err(); err != nil {
		return nil, wrapStoreErr("query logs", err)
	}
	return entries, nil
}

// decodeLogEntry maps a loosely shaped backend document. Unknown keys are
// kept in Extra.
func decodeLogEntry(raw bson.Raw) (models.LogEntry, error) {
	var entry models.LogEntry

	elems, err := raw.Elements()
	if err != nil {
		return entry, err
	}

	extra := bson.M{}
	for _, el := range elems {
		val := el.Value()
		switch el.Key() {
		case "_id":
			entry.ID = idString(val)
		case "role":
			entry.Role, _ = val.StringValueOK()
		case "content":
			entry.Content, _ = val.StringValueOK()
		case "sessionId":
			entry.SessionID, _ = val.StringValueOK()
		case "ip":
			entry.IP, _ = val.StringValueOK()
		case "timestamp":
			if ts, ok := timeValue(val); ok {
				entry.Timestamp = &ts
			}
		default:
			var v interface{}
			if err := val.Unmarshal(&v); err == nil {
				extra[el.Key()] = v
			}
		}
	}

	if len(extra) > 0 {
		b, err := bson.MarshalExtJSON(extra, false, false)
		if err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}
	return entry, nil
}

func idString(v bson.RawValue) string {
	switch v.Type {
	case bsontype.ObjectID:
		return v.ObjectID().Hex()
	case bsontype.String:
		return v.StringValue()
	default:
		return fmt.Sprint(v)
	}
}

func timeValue(v bson.RawValue) (time.Time, bool) {
	switch v.Type {
	case bsontype.DateTime:
		return v.Time(), true
	case bsontype.Timestamp:
		sec, _ := v.Timestamp()
		return time.Unix(int64(sec), 0), true
	case bsontype.Int64:
		return time.UnixMilli(v.Int64()), true
	case bsontype.Int32:
		return time.UnixMilli(int64(v.Int32())), true
	case bsontype.Double:
		return time.UnixMilli(int64(v.Double())), true
	case bsontype.String:
		if t, err := time.Parse(time.RFC3339, v.StringValue()); err == nil {
			return t, true
		}
	case bsontype.EmbeddedDocument:
		// {seconds, nanoseconds} as written by some SDKs
		var ts struct {
			Seconds     int64 `bson:"seconds"`
			Nanoseconds int64 `bson:"nanoseconds"`
		}
		if err := v.Unmarshal(&ts); err == nil && ts.Seconds > 0 {
			return time.Unix(ts.Seconds, ts.Nanoseconds), true
		}
	}
	return time.Time{}, false
}
