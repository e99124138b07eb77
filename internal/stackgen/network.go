package stackgen

import (
	"fmt"
	"net"

	"github.com/apparentlymart/go-cidr/cidr"

	"github.com/yaegashi/grafanaops/internal/cfn"
)

// maxSubnetBits caps carved subnets at /28, the smallest VPC subnet.
const maxSubnetBits = 28

// subnetLayout is the per-AZ subnet plan carved from the VPC block.
type subnetLayout struct {
	VPC     *net.IPNet
	Public  []*net.IPNet
	Private []*net.IPNet
}

// carveSubnets splits cidr into public subnets at indexes 0..n-1 and private
// subnets starting at the middle of the block. Subnets are 8 bits longer than
// the VPC prefix, capped at /28. A /16 yields 10.0.0.0/24, 10.0.1.0/24 public
// and 10.0.128.0/24, 10.0.129.0/24 private.
func carveSubnets(block string, azs int) (*subnetLayout, error) {
	ip, vpc, err := net.ParseCIDR(block)
	if err != nil {
		return nil, fmt.Errorf("network cidr: %w", err)
	}
	ones, size := vpc.Mask.Size()
	if ip.To4() == nil || size != 32 || !ip.Equal(vpc.IP) {
		return nil, fmt.Errorf("network cidr %s: want a masked IPv4 prefix", block)
	}
	newBits := min(ones+8, maxSubnetBits) - ones
	if newBits <= 0 {
		return nil, fmt.Errorf("network cidr %s: too small to split", block)
	}
	half := 1 << (newBits - 1)
	if azs < 1 || azs > half {
		return nil, fmt.Errorf("network cidr %s: room for %d subnet pairs, need %d", block, half, azs)
	}

	l := &subnetLayout{VPC: vpc}
	for i := 0; i < azs; i++ {
		pub, err := cidr.Subnet(vpc, newBits, i)
		if err != nil {
			return nil, fmt.Errorf("network cidr %s: public subnet %d: %w", block, i, err)
		}
		priv, err := cidr.Subnet(vpc, newBits, half+i)
		if err != nil {
			return nil, fmt.Errorf("network cidr %s: private subnet %d: %w", block, i, err)
		}
		l.Public = append(l.Public, pub)
		l.Private = append(l.Private, priv)
	}
	return l, nil
}

func publicSubnetID(i int) string  { return fmt.Sprintf("PublicSubnet%d", i+1) }
func privateSubnetID(i int) string { return fmt.Sprintf("PrivateSubnet%d", i+1) }

func (l *subnetLayout) publicRefs() []any {
	out := make([]any, len(l.Public))
	for i := range l.Public {
		out[i] = cfn.Ref(publicSubnetID(i))
	}
	return out
}

func (l *subnetLayout) privateRefs() []any {
	out := make([]any, len(l.Private))
	for i := range l.Private {
		out[i] = cfn.Ref(privateSubnetID(i))
	}
	return out
}

// network declares the VPC, internet gateway, subnets, NAT gateways and
// route tables. Private route table i routes through NAT gateway i % N.
func (b *builder) network() {
	b.add(IDVpc, "AWS::EC2::VPC", map[string]any{
		"CidrBlock":          b.net.VPC.String(),
		"EnableDnsHostnames": true,
		"EnableDnsSupport":   true,
		"Tags":               nameTag("vpc"),
	})
	b.add(IDInternetGateway, "AWS::EC2::InternetGateway", map[string]any{
		"Tags": nameTag("igw"),
	})
	b.add(IDGatewayAttachment, "AWS::EC2::VPCGatewayAttachment", map[string]any{
		"VpcId":             cfn.Ref(IDVpc),
		"InternetGatewayId": cfn.Ref(IDInternetGateway),
	})

	b.add("PublicRouteTable", "AWS::EC2::RouteTable", map[string]any{
		"VpcId": cfn.Ref(IDVpc),
		"Tags":  nameTag("public"),
	})
	route := b.add("PublicDefaultRoute", "AWS::EC2::Route", map[string]any{
		"RouteTableId":         cfn.Ref("PublicRouteTable"),
		"DestinationCidrBlock": "0.0.0.0/0",
		"GatewayId":            cfn.Ref(IDInternetGateway),
	})
	route.DependsOn = []string{IDGatewayAttachment}

	for i, p := range b.net.Public {
		id := publicSubnetID(i)
		b.add(id, "AWS::EC2::Subnet", map[string]any{
			"VpcId":               cfn.Ref(IDVpc),
			"CidrBlock":           p.String(),
			"AvailabilityZone":    b.env.AvailabilityZones[i],
			"MapPublicIpOnLaunch": true,
			"Tags":                nameTag(fmt.Sprintf("public-%d", i+1)),
		})
		b.add(id+"RouteTableAssociation", "AWS::EC2::SubnetRouteTableAssociation", map[string]any{
			"SubnetId":     cfn.Ref(id),
			"RouteTableId": cfn.Ref("PublicRouteTable"),
		})
	}

	nat := b.s.Network.NATGateways
	for i := 0; i < nat; i++ {
		eip := fmt.Sprintf("NatEip%d", i+1)
		r := b.add(eip, "AWS::EC2::EIP", map[string]any{
			"Domain": "vpc",
			"Tags":   nameTag(fmt.Sprintf("nat-%d", i+1)),
		})
		r.DependsOn = []string{IDGatewayAttachment}
		b.add(fmt.Sprintf("NatGateway%d", i+1), "AWS::EC2::NatGateway", map[string]any{
			"AllocationId": cfn.GetAtt(eip, "AllocationId"),
			"SubnetId":     cfn.Ref(publicSubnetID(i)),
			"Tags":         nameTag(fmt.Sprintf("nat-%d", i+1)),
		})
	}

	for i, p := range b.net.Private {
		id := privateSubnetID(i)
		rt := fmt.Sprintf("PrivateRouteTable%d", i+1)
		b.add(id, "AWS::EC2::Subnet", map[string]any{
			"VpcId":            cfn.Ref(IDVpc),
			"CidrBlock":        p.String(),
			"AvailabilityZone": b.env.AvailabilityZones[i],
			"Tags":             nameTag(fmt.Sprintf("private-%d", i+1)),
		})
		b.add(rt, "AWS::EC2::RouteTable", map[string]any{
			"VpcId": cfn.Ref(IDVpc),
			"Tags":  nameTag(fmt.Sprintf("private-%d", i+1)),
		})
		b.add(id+"RouteTableAssociation", "AWS::EC2::SubnetRouteTableAssociation", map[string]any{
			"SubnetId":     cfn.Ref(id),
			"RouteTableId": cfn.Ref(rt),
		})
		if nat > 0 {
			b.add(fmt.Sprintf("PrivateDefaultRoute%d", i+1), "AWS::EC2::Route", map[string]any{
				"RouteTableId":         cfn.Ref(rt),
				"DestinationCidrBlock": "0.0.0.0/0",
				"NatGatewayId":         cfn.Ref(fmt.Sprintf("NatGateway%d", i%nat+1)),
			})
		}
	}
}

// privateRouteIDs lists the NAT default routes; private tasks wait for them.
func (b *builder) privateRouteIDs() []string {
	if b.s.Network.NATGateways == 0 {
		return nil
	}
	ids := make([]string, len(b.net.Private))
	for i := range ids {
		ids[i] = fmt.Sprintf("PrivateDefaultRoute%d", i+1)
	}
	return ids
}
