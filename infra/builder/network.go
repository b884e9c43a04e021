package builder

import (
	"github.com/reginaldFerland/cdk/infra/config"
	"github.com/reginaldFerland/cdk/infra/manifest"
)

// WithVpc declares the stack's network: public and private subnets with
// egress for services, plus an isolated tier for data stores. Later database
// clusters in this builder are placed in it.
func (b *Builder) WithVpc(out *manifest.Ref) *Builder {
	const op = "WithVpc"
	if !b.ok() {
		return b
	}
	if !b.network.IsZero() {
		return b.fail(op, "network already declared as "+b.network.Name, nil)
	}

	sizing := config.DefaultNetworkConfig()
	if s, ok := b.cfg.(config.NetworkSizing); ok {
		sizing = s.NetworkConfig()
	}

	name := b.id.App + "-vpc"
	ref, _, ok := b.declare(op, name, manifest.Network{
		VpcName:     name,
		CIDR:        sizing.CIDR,
		MaxAzs:      sizing.MaxAzs,
		ReservedAzs: sizing.ReservedAzs,
		NatGateways: sizing.NatGateways,
		Subnets: []manifest.Subnet{
			{Name: "public", Type: manifest.SubnetPublic, CidrMask: 24},
			{Name: "private", Type: manifest.SubnetPrivateWithEgress, CidrMask: 24},
			{Name: "Isolated", Type: manifest.SubnetIsolated, CidrMask: 20},
		},
	})
	if !ok {
		return b
	}
	b.network = ref
	bind(out, ref)
	return b
}

func dedicatedDatabaseNetwork() *manifest.Network {
	return &manifest.Network{
		CIDR:        config.DefaultNetworkConfig().CIDR,
		MaxAzs:      2,
		NatGateways: 1,
		Subnets: []manifest.Subnet{
			{Name: "public", Type: manifest.SubnetPublic},
			{Name: "private", Type: manifest.SubnetPrivateWithEgress},
		},
	}
}
