package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/pipeos/pipes/src/utils/model"

	"github.com/patrickmn/go-cache"
	"github.com/rs/xid"
	"golang.org/x/exp/slices"
)

// Repository kept in process memory. Records are stored serialized, so callers never share them.
type Memory[T any, PT entity[T]] struct {
	cache *cache.Cache

	// Guards read-modify-write sequences
	mtx sync.Mutex
	seq uint64
}

type memoryItem struct {
	seq  uint64
	data []byte
}

type memoryRecord[T any] struct {
	seq   uint64
	value *T
	doc   map[string]any
}

func NewMemory[T any, PT entity[T]]() *Memory[T, PT] {
	return &Memory[T, PT]{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Containers: NewMemory[model.PipeContainer](),
		Functions:  NewMemoryFunctions(),
		Tags:       NewMemory[model.Tag](),
	}
}

func (self *Memory[T, PT]) decode(item memoryItem) (out memoryRecord[T], err error) {
	out.seq = item.seq
	out.value = new(T)
	err = json.Unmarshal(item.data, out.value)
	if err != nil {
		return
	}
	err = json.Unmarshal(item.data, &out.doc)
	return
}

func (self *Memory[T, PT]) put(seq uint64, entity *T) (err error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return
	}
	self.cache.Set(PT(entity).GetId(), memoryItem{seq: seq, data: data}, cache.NoExpiration)
	return
}

func (self *Memory[T, PT]) get(id string) (out memoryRecord[T], err error) {
	item, ok := self.cache.Get(id)
	if !ok {
		err = ErrNotFound
		return
	}
	return self.decode(item.(memoryItem))
}

// Records matching the filter, sorted and paginated if requested
func (self *Memory[T, PT]) list(filter *Filter, paginate bool) (out []memoryRecord[T], err error) {
	_, err = filter.columns(PT(new(T)).Fields())
	if err != nil {
		return
	}

	matcher, err := newMatcher(filter)
	if err != nil {
		return
	}

	for _, item := range self.cache.Items() {
		var record memoryRecord[T]
		record, err = self.decode(item.Object.(memoryItem))
		if err != nil {
			return
		}
		if matcher.matches(record.doc) {
			out = append(out, record)
		}
	}

	var orders []Order
	if filter != nil {
		orders = filter.Order
	}
	slices.SortStableFunc(out, func(a, b memoryRecord[T]) int {
		for _, order := range orders {
			c := compareValues(a.doc[order.Field], b.doc[order.Field])
			if order.Descending {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return compareValues(float64(a.seq), float64(b.seq))
	})

	if !paginate || filter == nil {
		return
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return
}

func (self *Memory[T, PT]) Create(ctx context.Context, entity *T) (out *T, err error) {
	err = PT(entity).Validate()
	if err != nil {
		return
	}

	PT(entity).SetId(xid.New().String())
	PT(entity).SetDefaults(time.Now().UTC())

	self.mtx.Lock()
	defer self.mtx.Unlock()

	self.seq++
	err = self.put(self.seq, entity)
	if err != nil {
		return
	}
	return entity, nil
}

func (self *Memory[T, PT]) FindById(ctx context.Context, id string) (out *T, err error) {
	record, err := self.get(id)
	if err != nil {
		return
	}
	return record.value, nil
}

func (self *Memory[T, PT]) Find(ctx context.Context, filter *Filter) (out []*T, err error) {
	records, err := self.list(filter, true)
	if err != nil {
		return
	}

	out = make([]*T, len(records))
	for i, record := range records {
		out[i] = record.value
	}
	return
}

func (self *Memory[T, PT]) UpdateById(ctx context.Context, id string, patch map[string]any) (err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	record, err := self.get(id)
	if err != nil {
		return
	}

	updated, err := applyPatch[T, PT](record.value, patch)
	if err != nil {
		return
	}

	return self.put(record.seq, updated)
}

func (self *Memory[T, PT]) UpdateAll(ctx context.Context, patch map[string]any, filter *Filter) (count int64, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	records, err := self.list(filter, true)
	if err != nil {
		return
	}

	// Validate everything before changing anything
	updated := make([]*T, len(records))
	for i, record := range records {
		updated[i], err = applyPatch[T, PT](record.value, patch)
		if err != nil {
			return
		}
	}

	for i, record := range records {
		err = self.put(record.seq, updated[i])
		if err != nil {
			return
		}
		count++
	}
	return
}

func (self *Memory[T, PT]) DeleteById(ctx context.Context, id string) (err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	_, ok := self.cache.Get(id)
	if !ok {
		return ErrNotFound
	}
	self.cache.Delete(id)
	return
}

func (self *Memory[T, PT]) Delete(ctx context.Context, filter *Filter) (count int64, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()

	records, err := self.list(filter, false)
	if err != nil {
		return
	}

	for _, record := range records {
		self.cache.Delete(PT(record.value).GetId())
		count++
	}
	return
}

func (self *Memory[T, PT]) Count(ctx context.Context, filter *Filter) (count int64, err error) {
	records, err := self.list(filter, false)
	if err != nil {
		return
	}
	return int64(len(records)), nil
}

type MemoryFunctions struct {
	*Memory[model.PipeFunction, *model.PipeFunction]
}

func NewMemoryFunctions() *MemoryFunctions {
	return &MemoryFunctions{
		Memory: NewMemory[model.PipeFunction](),
	}
}

func (self *MemoryFunctions) Children(containerId string) Repository[model.PipeFunction] {
	return newChildren(self, containerId)
}

// Evaluates filter conditions against a record serialized to a JSON object
type matcher struct {
	where map[string]any
	like  map[string]*regexp.Regexp
}

func newMatcher(filter *Filter) (self *matcher, err error) {
	self = &matcher{
		where: make(map[string]any),
		like:  make(map[string]*regexp.Regexp),
	}
	if filter == nil {
		return
	}

	for field, value := range filter.Where {
		// Compare values in their JSON form, same as records
		var buf []byte
		buf, err = json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFilter, err.Error())
		}
		var normalized any
		err = json.Unmarshal(buf, &normalized)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFilter, err.Error())
		}
		self.where[field] = normalized
	}

	for field, pattern := range filter.Like {
		self.like[field], err = likeToRegexp(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidFilter, err.Error())
		}
	}
	return
}

func (self *matcher) matches(doc map[string]any) bool {
	for field, want := range self.where {
		if !reflect.DeepEqual(doc[field], want) {
			return false
		}
	}
	for field, re := range self.like {
		value, ok := doc[field]
		if !ok || value == nil {
			return false
		}
		if !re.MatchString(fmt.Sprint(value)) {
			return false
		}
	}
	return true
}

// Translates a LIKE pattern with \ as the escape character
func likeToRegexp(pattern string) (*regexp.Regexp, error) {
	var buf strings.Builder
	buf.WriteString(`(?s)^`)
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			buf.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			buf.WriteString(`.*`)
		case r == '_':
			buf.WriteString(`.`)
		default:
			buf.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	buf.WriteString(`$`)
	return regexp.Compile(buf.String())
}

// Orders JSON values: absent first, then numbers, then anything else as text
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	af, aIsNumber := a.(float64)
	bf, bIsNumber := b.(float64)
	if aIsNumber && bIsNumber {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
