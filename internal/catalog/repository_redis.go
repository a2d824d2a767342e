package catalog

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/go-redis/redis/v8"
)

// Redis hash fields for a stored record.
const (
	fieldDeviceID     = "device_id"
	fieldModelPath    = "model_path"
	fieldTypeID       = "type_id"
	fieldName         = "name"
	fieldIntegerLower = "integer_lower"
	fieldIntegerUpper = "integer_upper"
	fieldDecimalLower = "decimal_lower"
	fieldDecimalUpper = "decimal_upper"
)

// RedisRepository implements Repository on Redis.
//
// Key layout under prefix:
//
//	{prefix}:record:{id}         hash of record fields (absent slots omitted)
//	{prefix}:ids                 set of all record IDs
//	{prefix}:device:{device_id}  set of record IDs owned by the device
type RedisRepository struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisRepository creates a repository storing keys under prefix,
// e.g. "graylogic:catalog:sensors".
func NewRedisRepository(client redis.UniversalClient, prefix string) *RedisRepository {
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) recordKey(id string) string { return r.prefix + ":record:" + id }
func (r *RedisRepository) idsKey() string             { return r.prefix + ":ids" }
func (r *RedisRepository) deviceKey(id string) string { return r.prefix + ":device:" + id }

// Save inserts a new record.
func (r *RedisRepository) Save(ctx context.Context, rec Record) error {
	added, err := r.client.SAdd(ctx, r.idsKey(), rec.ID).Result()
	if err != nil {
		return repoErr("reserving record id", err)
	}
	if added == 0 {
		return ErrRecordExists
	}

	fields := map[string]any{
		fieldDeviceID:  rec.DeviceID,
		fieldModelPath: string(rec.ModelPath),
		fieldTypeID:    rec.TypeID,
		fieldName:      rec.Name,
	}
	if rec.IntegerLower != nil {
		fields[fieldIntegerLower] = strconv.Itoa(*rec.IntegerLower)
	}
	if rec.IntegerUpper != nil {
		fields[fieldIntegerUpper] = strconv.Itoa(*rec.IntegerUpper)
	}
	if rec.DecimalLower != nil {
		fields[fieldDecimalLower] = strconv.FormatFloat(*rec.DecimalLower, 'g', -1, 64)
	}
	if rec.DecimalUpper != nil {
		fields[fieldDecimalUpper] = strconv.FormatFloat(*rec.DecimalUpper, 'g', -1, 64)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.recordKey(rec.ID), fields)
		pipe.SAdd(ctx, r.deviceKey(rec.DeviceID), rec.ID)
		return nil
	})
	if err != nil {
		// Release the reserved ID so a retry can succeed.
		r.client.SRem(ctx, r.idsKey(), rec.ID) //nolint:errcheck // best effort
		return repoErr("writing record", err)
	}
	return nil
}

// List retrieves all records ordered by name.
func (r *RedisRepository) List(ctx context.Context) ([]Record, error) {
	ids, err := r.client.SMembers(ctx, r.idsKey()).Result()
	if err != nil {
		return nil, repoErr("listing record ids", err)
	}
	return r.loadRecords(ctx, ids)
}

// GetByID retrieves a record by ID.
func (r *RedisRepository) GetByID(ctx context.Context, id string) (*Record, error) {
	fields, err := r.client.HGetAll(ctx, r.recordKey(id)).Result()
	if err != nil {
		return nil, repoErr("reading record", err)
	}
	if len(fields) == 0 {
		return nil, ErrRecordNotFound
	}
	return parseRecordHash(id, fields)
}

// Exists reports whether a record with the given ID is stored.
func (r *RedisRepository) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.idsKey(), id).Result()
	if err != nil {
		return false, repoErr("checking record exists", err)
	}
	return ok, nil
}

// ListByDevice retrieves all records owned by a device.
func (r *RedisRepository) ListByDevice(ctx context.Context, deviceID string) ([]Record, error) {
	ids, err := r.client.SMembers(ctx, r.deviceKey(deviceID)).Result()
	if err != nil {
		return nil, repoErr("listing device records", err)
	}
	return r.loadRecords(ctx, ids)
}

// Delete removes a record by ID.
func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	deviceID, err := r.client.HGet(ctx, r.recordKey(id), fieldDeviceID).Result()
	if errors.Is(err, redis.Nil) {
		return ErrRecordNotFound
	}
	if err != nil {
		return repoErr("reading record owner", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.recordKey(id))
		pipe.SRem(ctx, r.idsKey(), id)
		pipe.SRem(ctx, r.deviceKey(deviceID), id)
		return nil
	})
	if err != nil {
		return repoErr("deleting record", err)
	}
	return nil
}

// loadRecords fetches the hashes for ids in one round trip.
func (r *RedisRepository) loadRecords(ctx context.Context, ids []string) ([]Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.StringStringMapCmd, len(ids))
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.recordKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, repoErr("reading records", err)
	}

	records := make([]Record, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue // removed between SMEMBERS and HGETALL
		}
		rec, err := parseRecordHash(ids[i], fields)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Name != records[j].Name {
			return records[i].Name < records[j].Name
		}
		return records[i].ID < records[j].ID
	})
	return records, nil
}

func parseRecordHash(id string, fields map[string]string) (*Record, error) {
	rec := &Record{
		ID:        id,
		DeviceID:  fields[fieldDeviceID],
		ModelPath: ModelPath(fields[fieldModelPath]),
		TypeID:    fields[fieldTypeID],
		Name:      fields[fieldName],
	}

	var err error
	if rec.IntegerLower, err = parseIntField(fields, fieldIntegerLower); err != nil {
		return nil, err
	}
	if rec.IntegerUpper, err = parseIntField(fields, fieldIntegerUpper); err != nil {
		return nil, err
	}
	if rec.DecimalLower, err = parseFloatField(fields, fieldDecimalLower); err != nil {
		return nil, err
	}
	if rec.DecimalUpper, err = parseFloatField(fields, fieldDecimalUpper); err != nil {
		return nil, err
	}
	return rec, nil
}

func parseIntField(fields map[string]string, name string) (*int, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, corrupt(name, "not an integer: %q", raw)
	}
	return &n, nil
}

func parseFloatField(fields map[string]string, name string) (*float64, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, corrupt(name, "not a number: %q", raw)
	}
	return &f, nil
}
