package configs

import (
	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
	"github.com/midtrans/midtrans-go/snap"
)

func midtransEnv(env ENV) midtrans.EnvironmentType {
	if env.MidtransProduction {
		return midtrans.Production
	}
	return midtrans.Sandbox
}

func NewMidtransSnapClient(env ENV) *snap.Client {
	var client snap.Client
	client.New(env.MidtransServerKey, midtransEnv(env))
	return &client
}

func NewMidtransCoreAPIClient(env ENV) *coreapi.Client {
	var client coreapi.Client
	client.New(env.MidtransServerKey, midtransEnv(env))
	return &client
}
