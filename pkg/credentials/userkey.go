package credentials

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/dmitrymomot/credcache/pkg/store"
)

// Key tags separating the index families inside the shared namespace.
// The three families also differ in arity (1, 3 and 5 segments), so
// same-arity pattern matching never crosses them.
const (
	userTag    = "user"
	sessionTag = "session"
)

// pkTagValue marks a struct field as part of the user's primary key:
//
//	type User struct {
//	    ID uuid.UUID `cache:"pk"`
//	}
const (
	pkTagName  = "cache"
	pkTagValue = "pk"
)

// UserKey derives the deterministic store key identifying user.
//
// The user must be a struct or pointer to struct. Primary-key fields
// are the ones tagged `cache:"pk"`; without tags, a field named ID is
// used. A single ID primary key collapses to the bare value; multiple
// fields are sorted lexicographically by field name and composed into
// "a=1,b=2" form, so the key is identical regardless of declaration
// order.
//
// UserKey panics when the user is not a recognized struct value or
// declares no primary key. That is a contract violation by the
// integrating application, not a runtime condition to recover from.
func UserKey(user any) store.Key {
	v := structValue(user)
	t := v.Type()

	fields := primaryKeyFields(t)
	if len(fields) == 0 {
		panic(fmt.Sprintf("credentials: user type %s has no primary key field (tag a field with `cache:\"pk\"` or add an ID field)", t.Name()))
	}

	if len(fields) == 1 && fields[0].Name == "ID" {
		id := fmt.Sprintf("%v", v.FieldByIndex(fields[0].Index).Interface())
		return store.K(userTag, t.Name(), id)
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s=%v", f.Name, v.FieldByIndex(f.Index).Interface())
	}

	return store.K(userTag, t.Name(), strings.Join(parts, ","))
}

// userTypeName returns the type tag used in user keys for the given
// prototype value. Panics for non-struct values, same as UserKey.
func userTypeName(prototype any) string {
	return structValue(prototype).Type().Name()
}

// structValue unwraps pointers and asserts the value is a struct.
func structValue(user any) reflect.Value {
	v := reflect.ValueOf(user)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			panic(fmt.Sprintf("credentials: cannot derive user key from nil %T", user))
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		panic(fmt.Sprintf("credentials: cannot derive user key from %T", user))
	}
	return v
}

// primaryKeyFields returns the tagged primary-key fields, falling back
// to an exported ID field when no field carries the tag.
func primaryKeyFields(t reflect.Type) []reflect.StructField {
	var tagged []reflect.StructField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if f.Tag.Get(pkTagName) == pkTagValue {
			tagged = append(tagged, f)
		}
	}
	if len(tagged) > 0 {
		return tagged
	}

	if f, ok := t.FieldByName("ID"); ok && f.IsExported() {
		return []reflect.StructField{f}
	}

	return nil
}

// sessionKey is the store key for a session record.
func sessionKey(sessionID string) store.Key {
	return store.K(sessionID)
}

// userSessionKey is the store key for the user-session index record:
// the user key extended with the session tag and id.
func userSessionKey(userKey store.Key, sessionID string) store.Key {
	key := make(store.Key, 0, len(userKey)+2)
	key = append(key, userKey...)
	return append(key, sessionTag, sessionID)
}

// userSessionPattern matches every user-session record for a user.
func userSessionPattern(userKey store.Key) store.Pattern {
	p := make(store.Pattern, 0, len(userKey)+2)
	p = append(p, userKey...)
	return append(p, sessionTag, store.Wildcard)
}
