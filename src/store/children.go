package store

import (
	"context"

	"github.com/pipeos/pipes/src/utils/model"
)

// Functions of one container. Records of other containers are invisible.
type children struct {
	parent      Repository[model.PipeFunction]
	containerId string
}

func newChildren(parent Repository[model.PipeFunction], containerId string) *children {
	return &children{
		parent:      parent,
		containerId: containerId,
	}
}

func (self *children) scope(filter *Filter) *Filter {
	out := filter.Clone()
	delete(out.Like, "containerid")
	out.WithWhere("containerid", self.containerId)
	if len(out.Order) == 0 {
		out.WithOrder("position", false)
	}
	return out
}

func (self *children) Create(ctx context.Context, function *model.PipeFunction) (*model.PipeFunction, error) {
	function.ContainerId = self.containerId
	return self.parent.Create(ctx, function)
}

func (self *children) FindById(ctx context.Context, id string) (out *model.PipeFunction, err error) {
	out, err = self.parent.FindById(ctx, id)
	if err != nil {
		return
	}
	if out.ContainerId != self.containerId {
		return nil, ErrNotFound
	}
	return
}

func (self *children) Find(ctx context.Context, filter *Filter) ([]*model.PipeFunction, error) {
	return self.parent.Find(ctx, self.scope(filter))
}

func (self *children) UpdateById(ctx context.Context, id string, patch map[string]any) (err error) {
	_, err = self.FindById(ctx, id)
	if err != nil {
		return
	}
	return self.parent.UpdateById(ctx, id, without(patch, "containerid"))
}

func (self *children) UpdateAll(ctx context.Context, patch map[string]any, filter *Filter) (int64, error) {
	return self.parent.UpdateAll(ctx, without(patch, "containerid"), self.scope(filter))
}

func (self *children) DeleteById(ctx context.Context, id string) (err error) {
	_, err = self.FindById(ctx, id)
	if err != nil {
		return
	}
	return self.parent.DeleteById(ctx, id)
}

func (self *children) Delete(ctx context.Context, filter *Filter) (int64, error) {
	return self.parent.Delete(ctx, self.scope(filter))
}

func (self *children) Count(ctx context.Context, filter *Filter) (int64, error) {
	return self.parent.Count(ctx, self.scope(filter))
}
