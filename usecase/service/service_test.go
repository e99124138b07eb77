package service

import (
	"context"
	"errors"
	"testing"

	"github.com/yaegashi/grafanaops/adapters/store/inmem"
	"github.com/yaegashi/grafanaops/domain/model"
)

func TestServiceUseCase(t *testing.T) {
	ctx := context.Background()
	store := inmem.NewStore()
	u := &UseCase{Repos: &Repos{Service: store.ServiceRepo, Provider: store.ProviderRepo}}

	if _, err := u.Create(ctx, &CreateInput{Name: "Not Valid"}); !errors.Is(err, model.ErrServiceInvalid) {
		t.Errorf("invalid name error = %v", err)
	}
	out, err := u.Create(ctx, &CreateInput{Name: "ops"})
	if err != nil {
		t.Fatal(err)
	}
	id := out.Service.ID

	if got, err := u.Get(ctx, &GetInput{ServiceID: id}); err != nil || got.Service.Name != "ops" {
		t.Errorf("Get() = %v, %v", got, err)
	}
	if _, err := u.Get(ctx, &GetInput{}); !errors.Is(err, model.ErrServiceInvalid) {
		t.Errorf("Get() without id error = %v", err)
	}

	p := &model.Provider{Name: "aws", ServiceID: id, Driver: "aws"}
	if err := store.ProviderRepo.Create(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := u.Delete(ctx, &DeleteInput{ServiceID: id}); !errors.Is(err, model.ErrServiceInvalid) {
		t.Errorf("Delete() of referenced service error = %v", err)
	}
	if err := store.ProviderRepo.Delete(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	if err := u.Delete(ctx, &DeleteInput{ServiceID: id}); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if list, _ := u.List(ctx); len(list.Services) != 0 {
		t.Errorf("List() after delete = %d", len(list.Services))
	}
}
