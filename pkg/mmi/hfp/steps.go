package hfp

import (
	"context"

	"github.com/pts-bot/mmi2grpc/pkg/mmi"
	"github.com/pts-bot/mmi2grpc/pkg/pandora"
)

// Battery levels reported by the battery MMIs.
const (
	BatteryCharged    = 100
	BatteryDischarged = 42
)

func (p *Proxy) stepList() []mmi.Step {
	return []mmi.Step{
		{
			Name: "TSC_delete_pairing_iut",
			Description: `Delete the pairing with the PTS using the Implementation Under Test
				(IUT), then click Ok.`,
			Handle: p.deletePairing,
		},
		{
			Name: "TSC_iut_enable_slc",
			Description: `Click Ok, then initiate a service level connection from the
				Implementation Under Test (IUT) to the PTS.`,
			Handle: p.enableSlc,
		},
		{
			Name: "TSC_iut_search",
			Description: `Using the Implementation Under Test (IUT), perform a search for the PTS.
				If found, click OK.`,
			Handle: p.search,
		},
		{
			Name: "TSC_iut_connect",
			Description: `Click Ok, then make a connection request to the PTS from the
				Implementation Under Test (IUT).`,
			Handle: p.connect,
		},
		{
			Name:        "TSC_iut_connectable",
			Description: `Make the Implementation Under Test (IUT) connectable, then click Ok.`,
			Handle:      p.connectable,
		},
		{
			Name: "TSC_iut_disable_slc",
			Description: `Click Ok, then disable the service level connection using the
				Implementation Under Test (IUT).`,
			Handle: p.disableSlc,
		},
		{
			Name: "TSC_make_battery_charged",
			Description: `Click Ok, then manipulate the Implementation Under Test (IUT) so that
				the battery is fully charged.`,
			Handle: p.batteryCharged,
		},
		{
			Name: "TSC_make_battery_discharged",
			Description: `Manipulate the Implementation Under Test (IUT) so that the battery level
				is not fully charged, then click Ok.`,
			Handle: p.batteryDischarged,
		},
	}
}

func (p *Proxy) deletePairing(ctx context.Context, req *mmi.Request) (string, error) {
	if _, err := p.security.DeletePairing(ctx, &pandora.DeletePairingRequest{Address: req.PTSAddr}); err != nil {
		return "", err
	}
	return mmi.AnswerOK, nil
}

// enableSlc reuses the current connection and only connects when there is none.
func (p *Proxy) enableSlc(ctx context.Context, req *mmi.Request) (string, error) {
	if p.Connection() == nil {
		resp, err := p.host.Connect(ctx, &pandora.ConnectRequest{Address: req.PTSAddr})
		if err != nil {
			return "", err
		}
		p.setConnection(resp.Connection, req.Name)
	}
	if _, err := p.hfp.EnableSlc(ctx, &pandora.EnableSlcRequest{Connection: p.Connection()}); err != nil {
		return "", err
	}
	return mmi.AnswerOK, nil
}

func (p *Proxy) search(context.Context, *mmi.Request) (string, error) {
	return mmi.AnswerOK, nil
}

// connect always opens a new link, replacing any stored connection.
func (p *Proxy) connect(ctx context.Context, req *mmi.Request) (string, error) {
	resp, err := p.host.Connect(ctx, &pandora.ConnectRequest{Address: req.PTSAddr})
	if err != nil {
		return "", err
	}
	p.setConnection(resp.Connection, req.Name)
	return mmi.AnswerOK, nil
}

func (p *Proxy) connectable(ctx context.Context, req *mmi.Request) (string, error) {
	if !waitsOnConnectable(req.Test) {
		return mmi.AnswerOK, nil
	}
	resp, err := p.host.WaitConnection(ctx, &pandora.WaitConnectionRequest{Address: req.PTSAddr})
	if err != nil {
		return "", err
	}
	p.setConnection(resp.Connection, req.Name)
	return mmi.AnswerOK, nil
}

// disableSlc answers first; the PTS must see the answer before the link
// drops. The connection is read when the delayed call fires.
func (p *Proxy) disableSlc(ctx context.Context, _ *mmi.Request) (string, error) {
	p.deferAction(ctx, "DisableSlc", p.cfg.DisableSlcDelay, func(ctx context.Context) error {
		_, err := p.hfp.DisableSlc(ctx, &pandora.DisableSlcRequest{Connection: p.Connection()})
		return err
	})
	return mmi.AnswerOK, nil
}

func (p *Proxy) batteryCharged(ctx context.Context, _ *mmi.Request) (string, error) {
	return p.setBatteryLevel(ctx, BatteryCharged)
}

func (p *Proxy) batteryDischarged(ctx context.Context, _ *mmi.Request) (string, error) {
	return p.setBatteryLevel(ctx, BatteryDischarged)
}

func (p *Proxy) setBatteryLevel(ctx context.Context, level int32) (string, error) {
	_, err := p.hfp.SetBatteryLevel(ctx, &pandora.SetBatteryLevelRequest{
		Connection:        p.Connection(),
		BatteryPercentage: level,
	})
	if err != nil {
		return "", err
	}
	return mmi.AnswerOK, nil
}
