// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package school

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrBadField is returned by ParseFields for arguments without a key.
var ErrBadField = errors.New("field must be key=value")

// Collection is the part of *mongo.Collection the helpers use.
type Collection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
}

var _ Collection = (*mongo.Collection)(nil)

// ListAll returns every document in coll. An empty collection yields an
// empty, non-nil slice.
func ListAll(ctx context.Context, coll Collection) ([]bson.M, error) {
	cur, err := coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}

	docs := []bson.M{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []bson.M{}
	}
	return docs, nil
}

// InsertSchool inserts fields as a new document and returns its _id.
func InsertSchool(ctx context.Context, coll Collection, fields bson.M) (interface{}, error) {
	res, err := coll.InsertOne(ctx, fields)
	if err != nil {
		return nil, err
	}
	return res.InsertedID, nil
}

// ParseFields turns key=value arguments into a document. Values that look
// like integers or floats, and the literals true and false, are stored as
// such; everything else is a string. A repeated key keeps the last value.
func ParseFields(args []string) (bson.M, error) {
	doc := bson.M{}
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("%w: %q", ErrBadField, a)
		}
		doc[k] = scalar(v)
	}
	return doc, nil
}

func scalar(v string) interface{} {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	if !strings.ContainsAny(v, "0123456789") {
		return v
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}
