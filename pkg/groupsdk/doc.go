/*
Package groupsdk is the client SDK and wire format of the Docket groups
service.

The request and response types in this package are shared by the server
handlers and by Client, so both sides always agree on the JSON shapes.

	client := groupsdk.NewClient("https://groups.example.com", accessToken)

	group, err := client.CreateGroup(ctx, groupsdk.CreateGroupRequest{Name: "Flat 4B"})

	invite, err := client.GenerateInvite(ctx, group.ID)

	// Another user joins with the token.
	joined, err := otherClient.RedeemInvite(ctx, invite.Token)

Errors returned by the service are *APIError values carrying the HTTP status
and a stable error code:

	var apiErr *groupsdk.APIError
	if errors.As(err, &apiErr) && apiErr.Code == groupsdk.ErrorCodeGone {
		// the invite was used up or has expired
	}
*/
package groupsdk
